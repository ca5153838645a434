package domain

import "time"

type EventStatus int

const (
	EventNotStarted EventStatus = iota
	EventInProgress
	EventCompleted
)

func (s EventStatus) String() string {
	switch s {
	case EventNotStarted:
		return "NotStarted"
	case EventInProgress:
		return "InProgress"
	case EventCompleted:
		return "Completed"
	}
	return "Unknown"
}

// RoundPhase is the sub-cycle inside EventInProgress.
type RoundPhase int

const (
	RoundIdle RoundPhase = iota
	RoundOpen
	RoundClosing
)

func (p RoundPhase) String() string {
	switch p {
	case RoundOpen:
		return "RoundOpen"
	case RoundClosing:
		return "RoundClosing"
	}
	return "Idle"
}

// RotationState is the per-event rotation state machine snapshot.
// The controller exclusively owns the mutable instance; everything handed
// outside is a copy.
type RotationState struct {
	EventID       EventID
	CurrentRound  int // starts at 0, first started round is 1
	RoundDuration time.Duration
	RoundDeadline time.Time // zero when no round is open
	Status        EventStatus
	Phase         RoundPhase
	AllowRepeats  bool // relax no-repeat to least-recently-met once exhausted
}
