package sink

import (
	"context"
	"log/slog"

	"dating-lab/domain/event"
)

// LogSink traces every notification, the poor man's audit trail during
// development and load tests.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) LogSink {
	return LogSink{log: log}
}

func (s LogSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.RoundStarted:
		s.log.Info("Round started", "event", string(evt.Event), "round", evt.Round, "pairs", len(evt.Assignments))
	case event.RoundClosed:
		s.log.Info("Round closed", "event", string(evt.Event), "round", evt.Round)
	case event.RoomClosed:
		s.log.Debug("Room closed", "event", string(evt.Event), "room", string(evt.Room), "early", evt.Early)
	case event.ParticipantCompleted:
		s.log.Info("Participant completed", "event", string(evt.Event), "participant", string(evt.Participant))
	case event.ParticipantDisconnected:
		s.log.Info("Participant disconnected", "event", string(evt.Event), "participant", string(evt.Participant))
	case event.EventCompleted:
		s.log.Info("Event completed", "event", string(evt.Event), "round", evt.Round)
	default:
		s.log.Debug("Unhandled notification type")
	}
	return nil
}
