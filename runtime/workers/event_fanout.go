package workers

import (
	"context"
	"log/slog"
	"time"

	"dating-lab/contract"
	"dating-lab/domain/event"
)

// EventFanout broadcasts rotation notifications to in-process consumers.
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// ordering, durability, or retries. EventFanout is not a message broker:
// the at-least-once contract comes from the journal sink, and consumers
// deduplicate on notification identity.
//
// EventFanout is safe for concurrent use by multiple goroutines.
type EventFanout struct {
	Log           *slog.Logger
	Notifications chan event.DomainEvent
	registry      contract.IRegistry
	sinkTimeout   time.Duration
	sinks         []contract.EventSink
}

func NewEventFanout(log *slog.Logger, notifications chan event.DomainEvent,
	registry contract.IRegistry, sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{
		Log:           log,
		Notifications: notifications,
		registry:      registry,
		sinkTimeout:   sinkTimeout,
	}
}

// Add appends permanent sinks, consulted for every notification regardless
// of subscriptions.
func (w EventFanout) Add(sinks ...contract.EventSink) EventFanout {
	w.sinks = append(w.sinks, sinks...)
	return w
}

func (w EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt := <-w.Notifications:
			w.Fanout(ctx, evt)
		case <-ctx.Done():
			w.Log.Debug("Context done, stopping notification fanout")
			return nil
		}
	}
}

// Fanout delivers one notification to every permanent sink and every sink
// subscribed to the notification's event. A slow sink is bounded by the
// configured timeout and cannot stall the others indefinitely.
func (w EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	targets := w.sinks
	if w.registry != nil {
		targets = append(targets, w.registry.GetSinksForEvent(evt.EventID())...)
	}
	for _, sink := range targets {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := sink.Consume(sinkCtx, evt); err != nil {
			w.Log.Warn("Sink rejected notification", "error", err)
		}
		cancel()
	}
}
