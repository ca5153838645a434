package event

import (
	"time"

	"github.com/google/uuid"

	"dating-lab/domain"
)

// DomainEvent is a notification emitted by the rotation controller.
// Delivery is at-least-once: consumers deduplicate on ID, or on the
// (event, round) / (event, participant) identity carried by each type.
type DomainEvent interface {
	EventID() domain.EventID
}

// Assignment is one published pair placement for a round.
type Assignment struct {
	Left   domain.ParticipantID
	Right  domain.ParticipantID
	RoomID domain.RoomID
}

type RoundStarted struct {
	ID          uuid.UUID
	Event       domain.EventID
	Round       int
	Assignments []Assignment
	At          time.Time
}

func (e RoundStarted) EventID() domain.EventID { return e.Event }

type RoundClosed struct {
	ID    uuid.UUID
	Event domain.EventID
	Round int
	At    time.Time
}

func (e RoundClosed) EventID() domain.EventID { return e.Event }

// ParticipantCompleted fires when someone has met every eligible partner
// and the policy forbids repeats.
type ParticipantCompleted struct {
	ID          uuid.UUID
	Event       domain.EventID
	Participant domain.ParticipantID
	Round       int
	At          time.Time
}

func (e ParticipantCompleted) EventID() domain.EventID { return e.Event }

type ParticipantDisconnected struct {
	ID          uuid.UUID
	Event       domain.EventID
	Participant domain.ParticipantID
	Round       int
	At          time.Time
}

func (e ParticipantDisconnected) EventID() domain.EventID { return e.Event }

type EventCompleted struct {
	ID    uuid.UUID
	Event domain.EventID
	Round int
	At    time.Time
}

func (e EventCompleted) EventID() domain.EventID { return e.Event }

// RoomClosed fires for each room torn down, including early closes on disconnect.
type RoomClosed struct {
	ID     uuid.UUID
	Event  domain.EventID
	Room   domain.RoomID
	Round  int
	Early  bool
	At     time.Time
}

func (e RoomClosed) EventID() domain.EventID { return e.Event }
