package domain

import "time"

// RosterEntry is one participant of the initial roster supplied by the
// event configuration.
type RosterEntry struct {
	ID       ParticipantID `validate:"required"`
	Category Category      `validate:"required"`
}

// EventConfig is everything the controller needs to run the video-dating
// phase of one event.
type EventConfig struct {
	RoundDuration time.Duration `validate:"required,gt=0"`
	AllowRepeats  bool
	LeftCategory  Category      `validate:"required"`
	RightCategory Category      `validate:"required,nefield=LeftCategory"`
	Roster        []RosterEntry `validate:"dive"`
}
