//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"dating-lab/domain"
	"dating-lab/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives rotation notifications. Delivery is at-least-once;
// consumers deduplicate.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry maps connected participants to their notification sinks, scoped per event.
type IRegistry interface {
	GetSinksForEvent(eventID domain.EventID) []EventSink
	Subscribe(participantID domain.ParticipantID, eventID domain.EventID, sink EventSink)
	Unsubscribe(participantID domain.ParticipantID, eventID domain.EventID)
}

// VideoRoomProvider is the external room-provisioning collaborator.
// It is an unreliable remote service: every call may fail or hang, so each
// takes a context and callers bound their attempts.
type VideoRoomProvider interface {
	CreateRoom(ctx context.Context) (domain.RoomID, error)
	CloseRoom(ctx context.Context, id domain.RoomID) error
	ValidateRoom(ctx context.Context, id domain.RoomID) (bool, error)
}

// EventConfigSource supplies the rotation configuration and initial roster
// for an event.
type EventConfigSource interface {
	Config(ctx context.Context, eventID domain.EventID) (domain.EventConfig, error)
}

// SnapshotStore persists per-event rotation state across process restarts.
// The storage format is the store's concern, not the engine's.
type SnapshotStore interface {
	Load(eventID domain.EventID) (*domain.Snapshot, error)
	Save(eventID domain.EventID, snapshot domain.Snapshot) error
}
