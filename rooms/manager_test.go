package rooms

import (
	"context"
	goerrors "errors"
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"dating-lab/domain"
	"dating-lab/errors"
	"dating-lab/mocks"
)

func newTestManager(t *testing.T) (*Manager, *mocks.MockVideoRoomProvider, *domain.Registry) {
	t.Helper()
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockVideoRoomProvider(ctrl)
	registry := domain.NewRegistry()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	return NewManager(log, provider, registry), provider, registry
}

func TestManager_AllocateRoom(t *testing.T) {
	req := require.New(t)
	manager, provider, registry := newTestManager(t)
	req.NoError(registry.Register("alice", domain.CategoryFemale))
	req.NoError(registry.Register("bob", domain.CategoryMale))

	provider.EXPECT().CreateRoom(gomock.Any()).Return(domain.RoomID("room-1"), nil)

	roomID, err := manager.AllocateRoom(context.Background(), "alice", "bob", 1)

	req.NoError(err)
	req.Equal(domain.RoomID("room-1"), roomID)

	alice, _ := registry.Get("alice")
	bob, _ := registry.Get("bob")
	req.Equal(domain.StatusInRoom, alice.Status)
	req.Equal(domain.RoomID("room-1"), alice.CurrentRoomID)
	req.Equal(domain.StatusInRoom, bob.Status)

	room, ok := manager.RoomOf("alice")
	req.True(ok)
	req.True(room.Holds("bob"))
	req.Equal(1, room.Round)
}

func TestManager_Provision_RetriesOnce(t *testing.T) {
	req := require.New(t)
	manager, provider, _ := newTestManager(t)

	gomock.InOrder(
		provider.EXPECT().CreateRoom(gomock.Any()).Return(domain.RoomID(""), goerrors.New("rate limited")),
		provider.EXPECT().CreateRoom(gomock.Any()).Return(domain.RoomID("room-2"), nil),
	)

	roomID, err := manager.Provision(context.Background())

	req.NoError(err)
	req.Equal(domain.RoomID("room-2"), roomID)
}

func TestManager_Provision_FailsAfterRetry(t *testing.T) {
	req := require.New(t)
	manager, provider, _ := newTestManager(t)

	provider.EXPECT().CreateRoom(gomock.Any()).
		Return(domain.RoomID(""), goerrors.New("provider down")).Times(2)

	_, err := manager.Provision(context.Background())

	req.ErrorIs(err, errors.ErrRoomProvisioningFailed)
}

func TestManager_AllocateRoom_ProvisioningFailureLeavesStatusesUntouched(t *testing.T) {
	req := require.New(t)
	manager, provider, registry := newTestManager(t)
	req.NoError(registry.Register("alice", domain.CategoryFemale))
	req.NoError(registry.Register("bob", domain.CategoryMale))

	provider.EXPECT().CreateRoom(gomock.Any()).
		Return(domain.RoomID(""), goerrors.New("provider down")).Times(2)

	_, err := manager.AllocateRoom(context.Background(), "alice", "bob", 1)

	req.ErrorIs(err, errors.ErrRoomProvisioningFailed)
	alice, _ := registry.Get("alice")
	bob, _ := registry.Get("bob")
	req.Equal(domain.StatusWaiting, alice.Status)
	req.Equal(domain.StatusWaiting, bob.Status)
	req.Empty(manager.OpenRooms())
}

func TestManager_Open_RollsBackFirstOccupantOnSecondFailure(t *testing.T) {
	req := require.New(t)
	manager, _, registry := newTestManager(t)
	req.NoError(registry.Register("alice", domain.CategoryFemale))
	// "bob" never registered: the second MarkInRoom fails

	err := manager.Open("room-1", "alice", "bob", 1)

	req.ErrorIs(err, errors.ErrUnknownParticipant)
	alice, _ := registry.Get("alice")
	req.Equal(domain.StatusWaiting, alice.Status, "first occupant rolled back")
	req.Empty(manager.OpenRooms())
}

func TestManager_CloseRoom_ReturnsOccupantsToWaiting(t *testing.T) {
	req := require.New(t)
	manager, provider, registry := newTestManager(t)
	req.NoError(registry.Register("alice", domain.CategoryFemale))
	req.NoError(registry.Register("bob", domain.CategoryMale))

	provider.EXPECT().CreateRoom(gomock.Any()).Return(domain.RoomID("room-1"), nil)
	provider.EXPECT().CloseRoom(gomock.Any(), domain.RoomID("room-1")).Return(nil)

	_, err := manager.AllocateRoom(context.Background(), "alice", "bob", 1)
	req.NoError(err)
	req.NoError(manager.CloseRoom(context.Background(), "room-1"))

	alice, _ := registry.Get("alice")
	bob, _ := registry.Get("bob")
	req.Equal(domain.StatusWaiting, alice.Status)
	req.Equal(domain.StatusWaiting, bob.Status)
	req.Empty(manager.OpenRooms())
}

func TestManager_CloseRoom_DepartedOccupantIsDisconnected(t *testing.T) {
	req := require.New(t)
	manager, provider, registry := newTestManager(t)
	req.NoError(registry.Register("alice", domain.CategoryFemale))
	req.NoError(registry.Register("bob", domain.CategoryMale))

	provider.EXPECT().CreateRoom(gomock.Any()).Return(domain.RoomID("room-1"), nil)
	provider.EXPECT().CloseRoom(gomock.Any(), domain.RoomID("room-1")).Return(nil)

	_, err := manager.AllocateRoom(context.Background(), "alice", "bob", 1)
	req.NoError(err)
	req.NoError(manager.CloseRoom(context.Background(), "room-1", "bob"))

	alice, _ := registry.Get("alice")
	bob, _ := registry.Get("bob")
	req.Equal(domain.StatusWaiting, alice.Status, "remaining occupant is free for the next round")
	req.Equal(domain.StatusDisconnected, bob.Status)
}

func TestManager_Detach_UnknownRoom(t *testing.T) {
	req := require.New(t)
	manager, _, _ := newTestManager(t)

	req.ErrorIs(manager.Detach("no-such-room"), errors.ErrRoomNotFound)
}

func TestManager_Detach_IsIdempotentPerRoom(t *testing.T) {
	req := require.New(t)
	manager, provider, registry := newTestManager(t)
	req.NoError(registry.Register("alice", domain.CategoryFemale))
	req.NoError(registry.Register("bob", domain.CategoryMale))

	provider.EXPECT().CreateRoom(gomock.Any()).Return(domain.RoomID("room-1"), nil)

	_, err := manager.AllocateRoom(context.Background(), "alice", "bob", 1)
	req.NoError(err)

	req.NoError(manager.Detach("room-1"))
	req.ErrorIs(manager.Detach("room-1"), errors.ErrRoomNotFound)
}

func TestManager_Release_RetriesProviderCloseOnce(t *testing.T) {
	manager, provider, _ := newTestManager(t)

	// The mock expectations are the assertion
	gomock.InOrder(
		provider.EXPECT().CloseRoom(gomock.Any(), domain.RoomID("room-1")).Return(goerrors.New("timeout")),
		provider.EXPECT().CloseRoom(gomock.Any(), domain.RoomID("room-1")).Return(nil),
	)

	manager.Release(context.Background(), "room-1")
}

func TestManager_OpenRooms(t *testing.T) {
	req := require.New(t)
	manager, provider, registry := newTestManager(t)
	for _, id := range []domain.ParticipantID{"m1", "m2", "w1", "w2"} {
		req.NoError(registry.Register(id, domain.CategoryMale))
	}

	provider.EXPECT().CreateRoom(gomock.Any()).Return(domain.RoomID("room-1"), nil)
	provider.EXPECT().CreateRoom(gomock.Any()).Return(domain.RoomID("room-2"), nil)

	_, err := manager.AllocateRoom(context.Background(), "m1", "w1", 1)
	req.NoError(err)
	_, err = manager.AllocateRoom(context.Background(), "m2", "w2", 1)
	req.NoError(err)

	req.Len(manager.OpenRooms(), 2)

	_, ok := manager.RoomOf("m2")
	req.True(ok)
	_, ok = manager.RoomOf("nobody")
	req.False(ok)
}
