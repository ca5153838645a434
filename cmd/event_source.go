package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"dating-lab/domain"
)

// EnvConfigSource serves one event's rotation config parsed from the
// environment. Production deployments plug the admin backend in through the
// same contract; this source keeps a single-event engine runnable standalone.
type EnvConfigSource struct {
	eventID  domain.EventID
	config   domain.EventConfig
	validate *validator.Validate
}

// NewEnvConfigSource parses a roster of the form "id:category,id:category".
func NewEnvConfigSource(eventID, roster string, roundDuration time.Duration,
	allowRepeats bool, left, right string) (*EnvConfigSource, error) {
	entries := strings.Split(roster, ",")
	parsed := make([]domain.RosterEntry, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, category, found := strings.Cut(entry, ":")
		if !found {
			return nil, fmt.Errorf("malformed roster entry %q, want id:category", entry)
		}
		parsed = append(parsed, domain.RosterEntry{
			ID:       domain.ParticipantID(strings.TrimSpace(id)),
			Category: domain.Category(strings.TrimSpace(category)),
		})
	}

	source := &EnvConfigSource{
		eventID: domain.EventID(eventID),
		config: domain.EventConfig{
			RoundDuration: roundDuration,
			AllowRepeats:  allowRepeats,
			LeftCategory:  domain.Category(left),
			RightCategory: domain.Category(right),
			Roster:        parsed,
		},
		validate: validator.New(),
	}
	if err := source.validate.Struct(source.config); err != nil {
		return nil, fmt.Errorf("invalid event config: %w", err)
	}
	duplicates := lo.FindDuplicatesBy(parsed, func(e domain.RosterEntry) domain.ParticipantID { return e.ID })
	if len(duplicates) > 0 {
		return nil, fmt.Errorf("duplicate roster ids: %v", duplicates)
	}
	return source, nil
}

func (s *EnvConfigSource) Config(_ context.Context, eventID domain.EventID) (domain.EventConfig, error) {
	if eventID != s.eventID {
		return domain.EventConfig{}, fmt.Errorf("no config for event %s", eventID)
	}
	return s.config, nil
}
