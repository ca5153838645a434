package projection

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"dating-lab/domain"
	"dating-lab/domain/event"
)

func TestTimeline_FoldsAssignments(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline()

	req.NoError(timeline.Consume(context.Background(), event.RoundStarted{
		ID: uuid.New(), Event: "event-1", Round: 1,
		Assignments: []event.Assignment{
			{Left: "m1", Right: "w1", RoomID: "room-1"},
			{Left: "m2", Right: "w2", RoomID: "room-2"},
		},
	}))
	req.NoError(timeline.Consume(context.Background(), event.RoundStarted{
		ID: uuid.New(), Event: "event-1", Round: 2,
		Assignments: []event.Assignment{{Left: "m1", Right: "w2", RoomID: "room-3"}},
	}))

	meetings := timeline.MeetingsOf("m1")
	req.Len(meetings, 2)
	req.Equal(domain.ParticipantID("w1"), meetings[0].Partner)
	req.Equal(domain.ParticipantID("w2"), meetings[1].Partner)

	// Both sides of an assignment see the meeting
	w2 := timeline.MeetingsOf("w2")
	req.Len(w2, 2)
	req.Equal(domain.ParticipantID("m2"), w2[0].Partner)
	req.Equal(domain.ParticipantID("m1"), w2[1].Partner)

	last, ok := timeline.LastMeeting("m1")
	req.True(ok)
	req.Equal(2, last.Round)
	req.Equal(domain.RoomID("room-3"), last.Room)

	_, ok = timeline.LastMeeting("stranger")
	req.False(ok)
}

func TestTimeline_DropsDuplicateDeliveries(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline()

	evt := event.RoundStarted{
		ID: uuid.New(), Event: "event-1", Round: 1,
		Assignments: []event.Assignment{{Left: "m1", Right: "w1", RoomID: "room-1"}},
	}

	// At-least-once delivery: the same notification may arrive twice
	req.NoError(timeline.Consume(context.Background(), evt))
	req.NoError(timeline.Consume(context.Background(), evt))

	req.Len(timeline.MeetingsOf("m1"), 1)
}

func TestTimeline_IgnoresOtherNotificationKinds(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline()

	req.NoError(timeline.Consume(context.Background(), event.RoundClosed{ID: uuid.New(), Event: "event-1", Round: 1}))
	req.NoError(timeline.Consume(context.Background(), event.EventCompleted{ID: uuid.New(), Event: "event-1"}))

	req.Empty(timeline.MeetingsOf("m1"))
}
