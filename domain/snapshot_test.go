package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnapshotRegistry_RestoresStatusesAndOrder(t *testing.T) {
	req := require.New(t)

	registry := SnapshotRegistry([]ParticipantSnapshot{
		{ID: "m1", Category: CategoryMale, Status: StatusInRoom, RoomID: "room-1", JoinedSeq: 0},
		{ID: "w1", Category: CategoryFemale, Status: StatusWaiting, JoinedSeq: 1},
		{ID: "w2", Category: CategoryFemale, Status: StatusDisconnected, JoinedSeq: 2},
		{ID: "m2", Category: CategoryMale, Status: StatusCompleted, JoinedSeq: 3},
	})

	m1, err := registry.Get("m1")
	req.NoError(err)
	req.Equal(StatusInRoom, m1.Status)
	req.Equal(RoomID("room-1"), m1.CurrentRoomID)

	w2, err := registry.Get("w2")
	req.NoError(err)
	req.Equal(StatusDisconnected, w2.Status)

	m2, err := registry.Get("m2")
	req.NoError(err)
	req.Equal(StatusCompleted, m2.Status)

	all := registry.SnapshotAll()
	req.Len(all, 4)
	for i, p := range all {
		req.Equal(i, p.JoinedSeq)
	}
}

func TestSnapshotHistory_RestoresMeetings(t *testing.T) {
	req := require.New(t)

	history := SnapshotHistory([]PairingSnapshot{
		{A: "m1", B: "w1", Round: 1},
		{A: "m1", B: "w2", Round: 2},
	})

	req.True(history.HasMet("w1", "m1"))
	req.Equal(2, history.LastMetRound("m1", "w2"))
	req.False(history.HasMet("m1", "w3"))
	req.Len(history.Records(), 2)
}
