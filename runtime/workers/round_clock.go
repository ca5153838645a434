package workers

import (
	"context"
	"log/slog"
	"time"
)

// Rotator is the slice of the engine the clock needs.
type Rotator interface {
	AdvanceDue(ctx context.Context, now time.Time)
}

// RoundClock ticks every second and rotates the events whose round expired
// or whose rooms all emptied early. Disconnects are handled immediately by
// the controllers; the clock only drives round boundaries.
type RoundClock struct {
	log     *slog.Logger
	rotator Rotator
	period  time.Duration
}

func NewRoundClock(log *slog.Logger, rotator Rotator) *RoundClock {
	return &RoundClock{log: log, rotator: rotator, period: time.Second}
}

func (w *RoundClock) Run(ctx context.Context) error {
	w.log.Info("Starting round clock")
	ticker := time.NewTicker(w.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			w.rotator.AdvanceDue(ctx, now)
		}
	}
}
