package domain

import "time"

// Snapshot is the serializable image of one event's rotation state:
// registry, pairing history, and the state machine position. It is what the
// injected SnapshotStore persists between process restarts.
type Snapshot struct {
	EventID       EventID               `json:"event_id"`
	CurrentRound  int                   `json:"current_round"`
	RoundDuration time.Duration         `json:"round_duration"`
	Status        EventStatus           `json:"status"`
	AllowRepeats  bool                  `json:"allow_repeats"`
	Participants  []ParticipantSnapshot `json:"participants"`
	Pairings      []PairingSnapshot     `json:"pairings"`
	TakenAt       time.Time             `json:"taken_at"`
}

type ParticipantSnapshot struct {
	ID        ParticipantID     `json:"id"`
	Category  Category          `json:"category"`
	Status    ParticipantStatus `json:"status"`
	RoomID    RoomID            `json:"room_id,omitempty"`
	JoinedSeq int               `json:"joined_seq"`
}

type PairingSnapshot struct {
	A     ParticipantID `json:"a"`
	B     ParticipantID `json:"b"`
	Round int           `json:"round"`
}

// SnapshotRegistry rebuilds a Registry from persisted participants.
// Snapshots list participants in insertion order, so re-registering in slice
// order reproduces the original JoinedSeq sequence.
func SnapshotRegistry(participants []ParticipantSnapshot) *Registry {
	registry := NewRegistry()
	for _, p := range participants {
		_ = registry.Register(p.ID, p.Category)
		switch p.Status {
		case StatusInRoom:
			_ = registry.MarkInRoom(p.ID, p.RoomID)
		case StatusDisconnected:
			_ = registry.MarkDisconnected(p.ID)
		case StatusCompleted:
			_ = registry.MarkCompleted(p.ID)
		}
	}
	return registry
}

// SnapshotHistory rebuilds a History from persisted pairings.
func SnapshotHistory(pairings []PairingSnapshot) *History {
	history := NewHistory()
	for _, rec := range pairings {
		_ = history.Record(rec.A, rec.B, rec.Round)
	}
	return history
}
