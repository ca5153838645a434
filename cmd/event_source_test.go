package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dating-lab/domain"
)

func TestEnvConfigSource_ParsesRoster(t *testing.T) {
	req := require.New(t)

	source, err := NewEnvConfigSource("event-1", "m1:male, w1:female ,m2:male",
		10*time.Minute, false, "male", "female")
	req.NoError(err)

	cfg, err := source.Config(context.Background(), "event-1")
	req.NoError(err)
	req.Len(cfg.Roster, 3)
	req.Equal(domain.RosterEntry{ID: "w1", Category: domain.CategoryFemale}, cfg.Roster[1])
	req.Equal(10*time.Minute, cfg.RoundDuration)
	req.False(cfg.AllowRepeats)
}

func TestEnvConfigSource_RejectsMalformedEntry(t *testing.T) {
	req := require.New(t)

	_, err := NewEnvConfigSource("event-1", "m1:male,broken-entry",
		10*time.Minute, false, "male", "female")
	req.Error(err)
	req.Contains(err.Error(), "broken-entry")
}

func TestEnvConfigSource_RejectsDuplicateIDs(t *testing.T) {
	req := require.New(t)

	_, err := NewEnvConfigSource("event-1", "m1:male,w1:female,m1:male",
		10*time.Minute, false, "male", "female")
	req.Error(err)
	req.Contains(err.Error(), "duplicate")
}

func TestEnvConfigSource_RejectsInvalidConfig(t *testing.T) {
	req := require.New(t)

	// Same category on both sides
	_, err := NewEnvConfigSource("event-1", "m1:male,w1:female",
		10*time.Minute, false, "male", "male")
	req.Error(err)

	// Non-positive round duration
	_, err = NewEnvConfigSource("event-1", "m1:male,w1:female",
		0, false, "male", "female")
	req.Error(err)
}

func TestEnvConfigSource_UnknownEvent(t *testing.T) {
	req := require.New(t)

	source, err := NewEnvConfigSource("event-1", "m1:male,w1:female",
		10*time.Minute, false, "male", "female")
	req.NoError(err)

	_, err = source.Config(context.Background(), "other-event")
	req.Error(err)
}
