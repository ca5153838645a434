// Package projection builds local read models from observed notifications.
// Handles ordering and deduplication. Does not emit events or interact with
// the controllers directly.
package projection

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"dating-lab/domain"
	"dating-lab/domain/event"
)

// Meeting is one entry of a participant's dating timeline.
type Meeting struct {
	Event   domain.EventID
	Round   int
	Partner domain.ParticipantID
	Room    domain.RoomID
}

// Timeline folds RoundStarted notifications into per-participant meeting
// histories, so UI polling reads here instead of locking the controllers.
// Duplicate deliveries are dropped on the notification id.
type Timeline struct {
	mu       sync.RWMutex
	seen     map[uuid.UUID]struct{}
	meetings map[domain.ParticipantID][]Meeting
}

func NewTimeline() *Timeline {
	return &Timeline{
		seen:     make(map[uuid.UUID]struct{}),
		meetings: make(map[domain.ParticipantID][]Meeting),
	}
}

func (t *Timeline) Consume(_ context.Context, e event.DomainEvent) error {
	evt, ok := e.(event.RoundStarted)
	if !ok {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, dup := t.seen[evt.ID]; dup {
		return nil
	}
	t.seen[evt.ID] = struct{}{}
	for _, a := range evt.Assignments {
		t.meetings[a.Left] = append(t.meetings[a.Left],
			Meeting{Event: evt.Event, Round: evt.Round, Partner: a.Right, Room: a.RoomID})
		t.meetings[a.Right] = append(t.meetings[a.Right],
			Meeting{Event: evt.Event, Round: evt.Round, Partner: a.Left, Room: a.RoomID})
	}
	return nil
}

// MeetingsOf returns a copy of the participant's timeline in delivery order.
func (t *Timeline) MeetingsOf(id domain.ParticipantID) []Meeting {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Meeting, len(t.meetings[id]))
	copy(out, t.meetings[id])
	return out
}

// LastMeeting returns the most recent meeting, or false when none happened yet.
func (t *Timeline) LastMeeting(id domain.ParticipantID) (Meeting, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	history := t.meetings[id]
	if len(history) == 0 {
		return Meeting{}, false
	}
	return history[len(history)-1], true
}
