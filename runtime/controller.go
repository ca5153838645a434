// Package runtime drives round progression for live events.
// It orchestrates the registry, history, scheduler, and room manager without
// containing matching logic itself.
package runtime

import (
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"dating-lab/domain"
	"dating-lab/domain/event"
	"dating-lab/errors"
	"dating-lab/matching"
	"dating-lab/observability"
	"dating-lab/rooms"
)

// Controller owns the rotation state machine of a single event.
// All mutations go through its mutex: one writer per event, always. The
// scheduling decision is computed under the lock; provider I/O happens
// outside it so a slow provisioning call never stalls unrelated processing.
type Controller struct {
	mu         sync.Mutex
	log        *slog.Logger
	state      domain.RotationState
	registry   *domain.Registry
	history    *domain.History
	roomMgr    *rooms.Manager
	scheduler  matching.Scheduler
	monitoring *observability.MonitoringManager
	notify     func(e event.DomainEvent)
	now        func() time.Time

	openedThisRound int
}

func NewController(
	log *slog.Logger,
	eventID domain.EventID,
	cfg domain.EventConfig,
	roomMgr *rooms.Manager,
	registry *domain.Registry,
	history *domain.History,
	monitoring *observability.MonitoringManager,
	notify func(e event.DomainEvent),
) *Controller {
	policy := matching.TwoCategoryPolicy{Left: cfg.LeftCategory, Right: cfg.RightCategory}
	return &Controller{
		log:        log.With("event", string(eventID)),
		registry:   registry,
		history:    history,
		roomMgr:    roomMgr,
		scheduler:  matching.NewScheduler(policy, cfg.AllowRepeats),
		monitoring: monitoring,
		notify:     notify,
		now:        time.Now,
		state: domain.RotationState{
			EventID:       eventID,
			RoundDuration: cfg.RoundDuration,
			Status:        domain.EventNotStarted,
			AllowRepeats:  cfg.AllowRepeats,
		},
	}
}

// WithClock replaces the wall clock, for deterministic tests.
func (c *Controller) WithClock(now func() time.Time) *Controller {
	c.now = now
	return c
}

// Start moves the event to InProgress and runs the first scheduling pass.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Status != domain.EventNotStarted {
		c.mu.Unlock()
		return fmt.Errorf("%w: start on %s event", errors.ErrInvalidStateTransition, c.state.Status)
	}
	c.state.Status = domain.EventInProgress
	c.mu.Unlock()

	c.log.Info("Event rotation started")
	return c.AdvanceRound(ctx)
}

// AdvanceRound closes the current round and schedules the next one.
// Provisioning failures are isolated per pair: the affected participants stay
// Waiting and the aggregated error is returned for the operator surface while
// the rest of the round proceeds.
func (c *Controller) AdvanceRound(ctx context.Context) error {
	// Phase 1, under the lock: close rooms and compute the pure scheduling decision.
	c.mu.Lock()
	if c.state.Status != domain.EventInProgress {
		c.mu.Unlock()
		return fmt.Errorf("%w: advancing a %s event", errors.ErrInvalidStateTransition, c.state.Status)
	}
	c.state.Phase = domain.RoundClosing
	var pending []event.DomainEvent
	closedRooms := c.closeAllLocked(&pending, false)

	nextRound := c.state.CurrentRound + 1
	waiting := matching.FromParticipants(c.registry.SnapshotWaiting(nil))
	active := matching.FromParticipants(c.registry.SnapshotActive())
	schedule := c.scheduler.Compute(nextRound, waiting, active, c.history)

	for _, id := range schedule.Exhausted {
		if err := c.registry.MarkCompleted(id); err != nil {
			c.mu.Unlock()
			return err
		}
		pending = append(pending, event.ParticipantCompleted{
			ID: uuid.New(), Event: c.state.EventID, Participant: id, Round: nextRound, At: c.now(),
		})
		c.log.Info("Participant exhausted all partners", "participant", string(id))
	}
	c.mu.Unlock()

	// Phase 2, no lock: provider I/O. Best-effort closes, then provisioning
	// with one retry per pair inside the manager.
	for _, roomID := range closedRooms {
		c.roomMgr.Release(ctx, roomID)
	}
	type provisioned struct {
		pair   matching.Pair
		roomID domain.RoomID
	}
	var (
		ready    []provisioned
		failures []error
	)
	for _, pair := range schedule.Pairs {
		roomID, err := c.roomMgr.Provision(ctx)
		if err != nil {
			c.monitoring.IncrProvisioningFailures()
			c.log.Error("Pair allocation failed, participants stay waiting",
				"left", string(pair.Left), "right", string(pair.Right), "error", err)
			failures = append(failures, err)
			continue
		}
		ready = append(ready, provisioned{pair: pair, roomID: roomID})
	}

	// Phase 3, lock re-acquired: apply results and open the round.
	c.mu.Lock()
	if c.state.Status != domain.EventInProgress {
		// The event ended while we were provisioning, give the handles back.
		c.mu.Unlock()
		for _, p := range ready {
			c.roomMgr.Release(ctx, p.roomID)
		}
		return goerrors.Join(failures...)
	}

	if len(schedule.Pairs) == 0 {
		// Nothing can be paired. Park the rotation instead of opening empty
		// rounds forever; a late join re-arms the clock.
		c.state.Phase = domain.RoundIdle
		c.state.RoundDeadline = time.Time{}
		c.openedThisRound = 0
		c.completeIfDoneLocked(&pending)
		c.mu.Unlock()
		c.publish(pending)
		c.log.Info("No pairs available, rotation parked", "waiting", len(schedule.Unmatched))
		return goerrors.Join(failures...)
	}

	var assignments []event.Assignment
	var unusedRooms []domain.RoomID
	c.openedThisRound = 0
	for _, p := range ready {
		if !c.bothWaitingLocked(p.pair) {
			// A disconnect raced the provisioning call. Drop the pair, the
			// survivor is rescheduled next round.
			unusedRooms = append(unusedRooms, p.roomID)
			continue
		}
		if err := c.roomMgr.Open(p.roomID, p.pair.Left, p.pair.Right, nextRound); err != nil {
			unusedRooms = append(unusedRooms, p.roomID)
			failures = append(failures, err)
			continue
		}
		if err := c.history.Record(p.pair.Left, p.pair.Right, nextRound); err != nil &&
			!goerrors.Is(err, errors.ErrAlreadyRecorded) {
			c.mu.Unlock()
			return err
		}
		c.monitoring.IncrPairsAllocated()
		c.openedThisRound++
		assignments = append(assignments, event.Assignment{
			Left: p.pair.Left, Right: p.pair.Right, RoomID: p.roomID,
		})
	}

	c.state.CurrentRound = nextRound
	c.state.Phase = domain.RoundOpen
	c.state.RoundDeadline = c.now().Add(c.state.RoundDuration)
	c.monitoring.IncrRoundsAdvanced()

	pending = append(pending, event.RoundStarted{
		ID: uuid.New(), Event: c.state.EventID, Round: nextRound,
		Assignments: assignments, At: c.now(),
	})
	c.completeIfDoneLocked(&pending)
	c.mu.Unlock()

	for _, roomID := range unusedRooms {
		c.roomMgr.Release(ctx, roomID)
	}
	c.publish(pending)
	c.log.Info("Round opened", "round", nextRound,
		"pairs", len(assignments), "unmatched", len(schedule.Unmatched), "failed", len(failures))
	return goerrors.Join(failures...)
}

// JoinLate registers a participant after the event started. They stay Waiting
// and are picked up by the next scheduling pass, never placed into a round
// already in flight.
func (c *Controller) JoinLate(id domain.ParticipantID, category domain.Category) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Status == domain.EventCompleted {
		return fmt.Errorf("%w: joining a Completed event", errors.ErrInvalidStateTransition)
	}
	if err := c.registry.Register(id, category); err != nil {
		return err
	}
	if c.state.Status == domain.EventInProgress && c.state.Phase == domain.RoundIdle {
		// The newcomer may unlock a pairing; make the parked rotation due.
		c.state.Phase = domain.RoundOpen
		c.state.RoundDeadline = c.now()
	}
	c.log.Info("Late join", "participant", string(id))
	return nil
}

// Disconnect removes a participant immediately, not at the round boundary.
// Their room, if any, closes early; the partner returns to Waiting and is
// matched preferentially next round through insertion-order fairness.
func (c *Controller) Disconnect(ctx context.Context, id domain.ParticipantID) error {
	c.mu.Lock()
	if _, err := c.registry.Get(id); err != nil {
		c.mu.Unlock()
		return err
	}
	var pending []event.DomainEvent
	var closedRoom domain.RoomID
	if room, ok := c.roomMgr.RoomOf(id); ok {
		if err := c.roomMgr.Detach(room.ID, id); err != nil {
			c.mu.Unlock()
			return err
		}
		closedRoom = room.ID
		if partner := room.PartnerOf(id); partner != "" {
			c.log.Info("Partner returned to waiting pool", "participant", string(partner))
		}
		pending = append(pending, event.RoomClosed{
			ID: uuid.New(), Event: c.state.EventID, Room: room.ID,
			Round: c.state.CurrentRound, Early: true, At: c.now(),
		})
	} else if err := c.registry.MarkDisconnected(id); err != nil {
		c.mu.Unlock()
		return err
	}
	c.monitoring.IncrDisconnects()
	pending = append(pending, event.ParticipantDisconnected{
		ID: uuid.New(), Event: c.state.EventID, Participant: id,
		Round: c.state.CurrentRound, At: c.now(),
	})
	c.completeIfDoneLocked(&pending)
	c.mu.Unlock()

	if closedRoom != "" {
		c.roomMgr.Release(ctx, closedRoom)
	}
	c.publish(pending)
	c.log.Info("Participant disconnected", "participant", string(id))
	return nil
}

// EndEvent terminates the rotation regardless of remaining rounds.
func (c *Controller) EndEvent(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Status == domain.EventCompleted {
		c.mu.Unlock()
		return fmt.Errorf("%w: ending a Completed event", errors.ErrInvalidStateTransition)
	}
	var pending []event.DomainEvent
	closedRooms := c.closeAllLocked(&pending, true)
	c.state.Status = domain.EventCompleted
	c.state.Phase = domain.RoundIdle
	c.state.RoundDeadline = time.Time{}
	c.monitoring.IncrCompletedEvents()
	pending = append(pending, event.EventCompleted{
		ID: uuid.New(), Event: c.state.EventID, Round: c.state.CurrentRound, At: c.now(),
	})
	c.mu.Unlock()

	for _, roomID := range closedRooms {
		c.roomMgr.Release(ctx, roomID)
	}
	c.publish(pending)
	c.log.Info("Event rotation completed", "round", c.CurrentRound())
	return nil
}

// DueForAdvance reports whether the round should rotate now: either the
// wall-clock deadline expired, or every room of an opened round already
// closed early.
func (c *Controller) DueForAdvance(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Status != domain.EventInProgress || c.state.Phase != domain.RoundOpen {
		return false
	}
	if !c.state.RoundDeadline.IsZero() && !now.Before(c.state.RoundDeadline) {
		return true
	}
	return c.openedThisRound > 0 && len(c.roomMgr.OpenRooms()) == 0
}

// CurrentAssignment answers "which room am I in right now", or false when the
// participant is between rounds.
func (c *Controller) CurrentAssignment(id domain.ParticipantID) (domain.RoomID, bool) {
	participant, err := c.registry.Get(id)
	if err != nil || participant.Status != domain.StatusInRoom {
		return "", false
	}
	return participant.CurrentRoomID, true
}

// Status returns a copy of the rotation state for polling callers.
func (c *Controller) Status() domain.RotationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) CurrentRound() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.CurrentRound
}

// Snapshot captures the full per-event state for the injected store.
func (c *Controller) Snapshot() domain.Snapshot {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()

	participants := lo.Map(c.registry.SnapshotAll(), func(p domain.Participant, _ int) domain.ParticipantSnapshot {
		return domain.ParticipantSnapshot{
			ID: p.ID, Category: p.Category, Status: p.Status,
			RoomID: p.CurrentRoomID, JoinedSeq: p.JoinedSeq,
		}
	})
	pairings := lo.Map(c.history.Records(), func(r domain.PairingRecord, _ int) domain.PairingSnapshot {
		return domain.PairingSnapshot{A: r.Pair.A, B: r.Pair.B, Round: r.Round}
	})
	return domain.Snapshot{
		EventID:       state.EventID,
		CurrentRound:  state.CurrentRound,
		RoundDuration: state.RoundDuration,
		Status:        state.Status,
		AllowRepeats:  state.AllowRepeats,
		Participants:  participants,
		Pairings:      pairings,
		TakenAt:       time.Now(),
	}
}

// closeAllLocked flips room and participant state for every open room and
// returns the handles whose provider-side close must still happen outside
// the lock.
func (c *Controller) closeAllLocked(pending *[]event.DomainEvent, ending bool) []domain.RoomID {
	open := c.roomMgr.OpenRooms()
	closed := make([]domain.RoomID, 0, len(open))
	for _, room := range open {
		if err := c.roomMgr.Detach(room.ID); err != nil {
			c.log.Warn("Room already gone while closing round", "room", string(room.ID), "error", err)
			continue
		}
		closed = append(closed, room.ID)
		*pending = append(*pending, event.RoomClosed{
			ID: uuid.New(), Event: c.state.EventID, Room: room.ID,
			Round: room.Round, Early: ending, At: c.now(),
		})
	}
	if len(closed) > 0 {
		*pending = append(*pending, event.RoundClosed{
			ID: uuid.New(), Event: c.state.EventID, Round: c.state.CurrentRound, At: c.now(),
		})
	}
	return closed
}

func (c *Controller) completeIfDoneLocked(pending *[]event.DomainEvent) {
	if c.state.Status != domain.EventInProgress {
		return
	}
	if len(c.registry.SnapshotActive()) > 0 {
		return
	}
	c.state.Status = domain.EventCompleted
	c.state.Phase = domain.RoundIdle
	c.state.RoundDeadline = time.Time{}
	c.monitoring.IncrCompletedEvents()
	*pending = append(*pending, event.EventCompleted{
		ID: uuid.New(), Event: c.state.EventID, Round: c.state.CurrentRound, At: c.now(),
	})
}

func (c *Controller) bothWaitingLocked(pair matching.Pair) bool {
	left, errL := c.registry.Get(pair.Left)
	right, errR := c.registry.Get(pair.Right)
	return errL == nil && errR == nil &&
		left.Status == domain.StatusWaiting && right.Status == domain.StatusWaiting
}

func (c *Controller) publish(pending []event.DomainEvent) {
	if c.notify == nil {
		return
	}
	for _, e := range pending {
		c.notify(e)
	}
}
