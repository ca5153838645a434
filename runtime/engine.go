package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dating-lab/contract"
	"dating-lab/domain"
	"dating-lab/domain/event"
	"dating-lab/errors"
	"dating-lab/observability"
	"dating-lab/rooms"
)

// Engine hosts one Controller per event. Events are fully independent: each
// has its own registry, history, and room manager, and its own single-writer
// lock, so one event's slow provisioning never stalls another's round timer.
type Engine struct {
	mu            sync.RWMutex
	log           *slog.Logger
	provider      contract.VideoRoomProvider
	store         contract.SnapshotStore
	configs       contract.EventConfigSource
	monitoring    *observability.MonitoringManager
	controllers   map[domain.EventID]*Controller
	roomMgrs      map[domain.EventID]*rooms.Manager
	notifications chan event.DomainEvent
}

func NewEngine(
	log *slog.Logger,
	provider contract.VideoRoomProvider,
	store contract.SnapshotStore,
	configs contract.EventConfigSource,
	monitoring *observability.MonitoringManager,
	bufferSize int,
) *Engine {
	return &Engine{
		log:           log,
		provider:      provider,
		store:         store,
		configs:       configs,
		monitoring:    monitoring,
		controllers:   make(map[domain.EventID]*Controller),
		roomMgrs:      make(map[domain.EventID]*rooms.Manager),
		notifications: make(chan event.DomainEvent, bufferSize),
	}
}

// Notifications is the stream the fanout worker drains.
func (e *Engine) Notifications() chan event.DomainEvent {
	return e.notifications
}

// Configure prepares the rotation state for an event: roster from the config
// source, or the persisted snapshot when one exists (process restart).
func (e *Engine) Configure(ctx context.Context, eventID domain.EventID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.controllers[eventID]; ok {
		return fmt.Errorf("%w: event %s already configured", errors.ErrInvalidStateTransition, eventID)
	}

	cfg, err := e.configs.Config(ctx, eventID)
	if err != nil {
		return fmt.Errorf("loading config for event %s: %w", eventID, err)
	}

	var (
		registry *domain.Registry
		history  *domain.History
		snapshot *domain.Snapshot
	)
	if e.store != nil {
		if snapshot, err = e.store.Load(eventID); err != nil {
			return fmt.Errorf("loading snapshot for event %s: %w", eventID, err)
		}
	}
	if snapshot != nil {
		registry = domain.SnapshotRegistry(snapshot.Participants)
		history = domain.SnapshotHistory(snapshot.Pairings)
		// Room handles do not survive a restart; anyone mid-room rejoins the
		// waiting pool and is rescheduled by the next pass.
		for _, p := range snapshot.Participants {
			if p.Status == domain.StatusInRoom {
				_ = registry.MarkWaiting(p.ID)
			}
		}
	} else {
		registry = domain.NewRegistry()
		history = domain.NewHistory()
		for _, entry := range cfg.Roster {
			if err := registry.Register(entry.ID, entry.Category); err != nil {
				return fmt.Errorf("registering roster entry %s: %w", entry.ID, err)
			}
		}
	}

	roomMgr := rooms.NewManager(e.log, e.provider, registry)
	controller := NewController(e.log, eventID, cfg, roomMgr, registry, history, e.monitoring, e.dispatch)
	if snapshot != nil {
		controller.state.CurrentRound = snapshot.CurrentRound
		controller.state.Status = snapshot.Status
		if snapshot.Status == domain.EventInProgress {
			// A rotation restored mid-event is due immediately: the next clock
			// sweep re-pairs the roster that lost its rooms over the restart.
			controller.state.Phase = domain.RoundOpen
			controller.state.RoundDeadline = controller.now()
		}
	}
	e.controllers[eventID] = controller
	e.roomMgrs[eventID] = roomMgr
	e.log.Info("Event configured", "event", string(eventID),
		"roster", len(cfg.Roster), "restored", snapshot != nil)
	return nil
}

func (e *Engine) Start(ctx context.Context, eventID domain.EventID) error {
	controller, err := e.controller(eventID)
	if err != nil {
		return err
	}
	err = controller.Start(ctx)
	e.persist(eventID, controller)
	return err
}

func (e *Engine) AdvanceRound(ctx context.Context, eventID domain.EventID) error {
	controller, err := e.controller(eventID)
	if err != nil {
		return err
	}
	err = controller.AdvanceRound(ctx)
	e.persist(eventID, controller)
	return err
}

func (e *Engine) EndEvent(ctx context.Context, eventID domain.EventID) error {
	controller, err := e.controller(eventID)
	if err != nil {
		return err
	}
	err = controller.EndEvent(ctx)
	e.persist(eventID, controller)
	return err
}

func (e *Engine) JoinLate(eventID domain.EventID, id domain.ParticipantID, category domain.Category) error {
	controller, err := e.controller(eventID)
	if err != nil {
		return err
	}
	err = controller.JoinLate(id, category)
	e.persist(eventID, controller)
	return err
}

func (e *Engine) Disconnect(ctx context.Context, eventID domain.EventID, id domain.ParticipantID) error {
	controller, err := e.controller(eventID)
	if err != nil {
		return err
	}
	err = controller.Disconnect(ctx, id)
	e.persist(eventID, controller)
	return err
}

func (e *Engine) CurrentAssignment(eventID domain.EventID, id domain.ParticipantID) (domain.RoomID, bool) {
	controller, err := e.controller(eventID)
	if err != nil {
		return "", false
	}
	return controller.CurrentAssignment(id)
}

func (e *Engine) Status(eventID domain.EventID) (domain.RotationState, error) {
	controller, err := e.controller(eventID)
	if err != nil {
		return domain.RotationState{}, err
	}
	return controller.Status(), nil
}

// AdvanceDue rotates every event whose round deadline expired or whose rooms
// all emptied early. Called by the clock worker; per-event errors are already
// partial-failure isolated, so one event's trouble never blocks the sweep.
func (e *Engine) AdvanceDue(ctx context.Context, now time.Time) {
	e.mu.RLock()
	due := make(map[domain.EventID]*Controller)
	for id, controller := range e.controllers {
		if controller.DueForAdvance(now) {
			due[id] = controller
		}
	}
	e.mu.RUnlock()

	for id, controller := range due {
		if err := controller.AdvanceRound(ctx); err != nil {
			e.log.Error("Round advancement reported failures", "event", string(id), "error", err)
		}
		e.persist(id, controller)
	}
}

// OpenRoomCount sums open rooms across events, for the monitoring surface.
func (e *Engine) OpenRoomCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	total := 0
	for _, mgr := range e.roomMgrs {
		total += len(mgr.OpenRooms())
	}
	return total
}

func (e *Engine) controller(eventID domain.EventID) (*Controller, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	controller, ok := e.controllers[eventID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownEvent, eventID)
	}
	return controller, nil
}

// dispatch pushes a notification to the fanout stream. Best-effort: when the
// buffer is full the event is dropped with a warning, consumers are expected
// to resynchronize through the query surface.
func (e *Engine) dispatch(evt event.DomainEvent) {
	select {
	case e.notifications <- evt:
	default:
		e.log.Warn(fmt.Sprintf("Notification channel full for event %s, dropping", evt.EventID()))
	}
}

func (e *Engine) persist(eventID domain.EventID, controller *Controller) {
	if e.store == nil {
		return
	}
	if err := e.store.Save(eventID, controller.Snapshot()); err != nil {
		e.log.Error("Snapshot save failed", "event", string(eventID), "error", err)
	}
}
