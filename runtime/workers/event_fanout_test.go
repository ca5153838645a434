package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"dating-lab/contract"
	"dating-lab/domain/event"
	"dating-lab/mocks"
)

func TestEventFanout_DeliversToPermanentAndSubscribedSinks(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRegistry := mocks.NewMockIRegistry(ctrl)
	mockSink := mocks.NewMockEventSink(ctrl)

	notifications := make(chan event.DomainEvent, 1)
	fanout := NewEventFanout(log, notifications, mockRegistry, 10*time.Second).
		Add(mockSink)

	evt := event.RoundStarted{Event: "event-1", Round: 1}

	// Given one subscribed sink next to the permanent one
	mockRegistry.EXPECT().GetSinksForEvent(evt.EventID()).
		Return([]contract.EventSink{mockSink}).Times(1)
	// Then both deliveries happen
	mockSink.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(2)

	fanout.Fanout(context.Background(), evt)
}

func TestEventFanout_SinkErrorDoesNotStopOthers(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	failing := mocks.NewMockEventSink(ctrl)
	healthy := mocks.NewMockEventSink(ctrl)

	notifications := make(chan event.DomainEvent, 1)
	fanout := NewEventFanout(log, notifications, nil, 10*time.Second).
		Add(failing, healthy)

	evt := event.RoundClosed{Event: "event-1", Round: 2}

	gomock.InOrder(
		failing.EXPECT().Consume(gomock.Any(), evt).Return(context.DeadlineExceeded),
		healthy.EXPECT().Consume(gomock.Any(), evt).Return(nil),
	)

	fanout.Fanout(context.Background(), evt)
}

func TestEventFanout_SinkTimeout(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockSink := mocks.NewMockEventSink(ctrl)

	sinkTimeout := 20 * time.Millisecond
	notifications := make(chan event.DomainEvent, 1)
	fanout := NewEventFanout(log, notifications, nil, sinkTimeout).Add(mockSink)

	// Given a sink hanging until its context expires
	mockSink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ event.DomainEvent) error {
			<-ctx.Done()     // Waiting for timeout to trigger cancellation
			return ctx.Err() // Sending back "context deadline exceeded"
		}).Times(1)

	start := time.Now()
	fanout.Fanout(context.Background(), event.EventCompleted{Event: "event-1"})

	// Then the fanout returned shortly after the per-sink timeout
	require.New(t).Less(time.Since(start), time.Second)
}

func TestEventFanout_RunDrainsUntilCanceled(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockSink := mocks.NewMockEventSink(ctrl)

	notifications := make(chan event.DomainEvent, 4)
	fanout := NewEventFanout(log, notifications, nil, time.Second).Add(mockSink)

	consumed := make(chan struct{}, 4)
	mockSink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, event.DomainEvent) error {
			consumed <- struct{}{}
			return nil
		}).Times(2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = fanout.Run(ctx)
		close(done)
	}()

	notifications <- event.RoundStarted{Event: "event-1", Round: 1}
	notifications <- event.RoundClosed{Event: "event-1", Round: 1}

	for range 2 {
		select {
		case <-consumed:
		case <-time.After(time.Second):
			req.Fail("Notification was not fanned out in time")
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("Run should return once the context is canceled")
	}
}
