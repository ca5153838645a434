// Package domain contains core concepts of the rotation engine.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

type (
	ParticipantID string
	Category      string
	EventID       string
)

const (
	CategoryMale   Category = "male"
	CategoryFemale Category = "female"
)

type ParticipantStatus int

const (
	StatusWaiting ParticipantStatus = iota
	StatusInRoom
	StatusDisconnected
	StatusCompleted
)

func (s ParticipantStatus) String() string {
	switch s {
	case StatusWaiting:
		return "Waiting"
	case StatusInRoom:
		return "InRoom"
	case StatusDisconnected:
		return "Disconnected"
	case StatusCompleted:
		return "Completed"
	}
	return "Unknown"
}

// Participant is the per-event view of a user enrolled in the video-dating phase.
// The ID is the stable external identifier (ticket or user id); the engine never
// interprets it.
type Participant struct {
	ID            ParticipantID
	Category      Category
	Status        ParticipantStatus
	CurrentRoomID RoomID // non-empty iff Status == StatusInRoom
	JoinedSeq     int    // insertion order inside the event, drives matching fairness
}

// Active reports whether the participant can still be scheduled in future rounds.
func (p Participant) Active() bool {
	return p.Status == StatusWaiting || p.Status == StatusInRoom
}
