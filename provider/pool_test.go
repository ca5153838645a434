package provider

import (
	"context"
	goerrors "errors"
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"dating-lab/domain"
	"dating-lab/mocks"
)

func newTestPool(t *testing.T, warm ...domain.RoomID) (*Pool, *mocks.MockVideoRoomProvider) {
	t.Helper()
	ctrl := gomock.NewController(t)
	inner := mocks.NewMockVideoRoomProvider(ctrl)
	pool := NewPool(logs.GetLoggerFromLevel(slog.LevelDebug), inner, warm)
	return pool, inner
}

func TestPool_CreateRoomTakesFromPool(t *testing.T) {
	req := require.New(t)
	pool, inner := newTestPool(t, "room-1", "room-2")

	inner.EXPECT().ValidateRoom(gomock.Any(), domain.RoomID("room-1")).Return(true, nil)

	roomID, err := pool.CreateRoom(context.Background())
	req.NoError(err)
	req.Equal(domain.RoomID("room-1"), roomID)
	req.Equal(1, pool.IdleCount())
}

func TestPool_DiscardsRevokedHandles(t *testing.T) {
	req := require.New(t)
	pool, inner := newTestPool(t, "revoked", "broken", "live")

	gomock.InOrder(
		inner.EXPECT().ValidateRoom(gomock.Any(), domain.RoomID("revoked")).Return(false, nil),
		inner.EXPECT().ValidateRoom(gomock.Any(), domain.RoomID("broken")).Return(false, goerrors.New("timeout")),
		inner.EXPECT().ValidateRoom(gomock.Any(), domain.RoomID("live")).Return(true, nil),
	)

	roomID, err := pool.CreateRoom(context.Background())
	req.NoError(err)
	req.Equal(domain.RoomID("live"), roomID)
	req.Equal(0, pool.IdleCount())
}

func TestPool_FallsBackToProviderWhenEmpty(t *testing.T) {
	req := require.New(t)
	pool, inner := newTestPool(t)

	inner.EXPECT().CreateRoom(gomock.Any()).Return(domain.RoomID("fresh"), nil)

	roomID, err := pool.CreateRoom(context.Background())
	req.NoError(err)
	req.Equal(domain.RoomID("fresh"), roomID)
}

func TestPool_CloseRecyclesHandle(t *testing.T) {
	req := require.New(t)
	pool, inner := newTestPool(t)

	req.NoError(pool.CloseRoom(context.Background(), "room-1"))
	req.Equal(1, pool.IdleCount())

	// The recycled handle is reused, never deactivated provider-side
	inner.EXPECT().ValidateRoom(gomock.Any(), domain.RoomID("room-1")).Return(true, nil)
	roomID, err := pool.CreateRoom(context.Background())
	req.NoError(err)
	req.Equal(domain.RoomID("room-1"), roomID)
	req.Equal(0, pool.IdleCount())
}
