package sink

import (
	"context"

	"dating-lab/domain/event"
)

// ChannelSink bridges the fanout to one connected consumer, typically a
// UI session. The buffered channel absorbs bursts; a full buffer drops the
// notification rather than blocking the fanout (the consumer resynchronizes
// through the query surface or the journal).
type ChannelSink struct {
	Notifications chan event.DomainEvent
}

func NewChannelSink(bufferSize int) *ChannelSink {
	return &ChannelSink{Notifications: make(chan event.DomainEvent, bufferSize)}
}

func (s *ChannelSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.Notifications <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		// Backpressure: the consumer is behind, drop rather than stall the fanout.
		return nil
	}
}
