package domain

import (
	"sync"

	"dating-lab/errors"
)

// Registry tracks the participants enrolled in one event and their current status.
// It is safe for concurrent use: the controller is the only writer, but status
// queries for UI polling may read at any time.
type Registry struct {
	mu      sync.RWMutex
	byID    map[ParticipantID]*Participant
	order   []ParticipantID // insertion order, drives SnapshotWaiting determinism
	nextSeq int
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[ParticipantID]*Participant)}
}

// Register adds a participant in Waiting status.
func (r *Registry) Register(id ParticipantID, category Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; ok {
		return errors.ErrDuplicateParticipant
	}
	r.byID[id] = &Participant{
		ID:        id,
		Category:  category,
		Status:    StatusWaiting,
		JoinedSeq: r.nextSeq,
	}
	r.order = append(r.order, id)
	r.nextSeq++
	return nil
}

func (r *Registry) MarkInRoom(id ParticipantID, roomID RoomID) error {
	return r.transition(id, func(p *Participant) {
		p.Status = StatusInRoom
		p.CurrentRoomID = roomID
	})
}

func (r *Registry) MarkWaiting(id ParticipantID) error {
	return r.transition(id, func(p *Participant) {
		p.Status = StatusWaiting
		p.CurrentRoomID = ""
	})
}

func (r *Registry) MarkDisconnected(id ParticipantID) error {
	return r.transition(id, func(p *Participant) {
		p.Status = StatusDisconnected
		p.CurrentRoomID = ""
	})
}

// MarkCompleted flags a participant that has exhausted every eligible partner.
func (r *Registry) MarkCompleted(id ParticipantID) error {
	return r.transition(id, func(p *Participant) {
		p.Status = StatusCompleted
		p.CurrentRoomID = ""
	})
}

func (r *Registry) transition(id ParticipantID, apply func(*Participant)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return errors.ErrUnknownParticipant
	}
	apply(p)
	return nil
}

// Get returns a copy of the participant, so callers can never mutate registry state.
func (r *Registry) Get(id ParticipantID) (Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return Participant{}, errors.ErrUnknownParticipant
	}
	return *p, nil
}

// SnapshotWaiting returns the currently Waiting participants in insertion order.
// A nil category means no filter. First-joined participants come first so the
// scheduler matches them preferentially.
func (r *Registry) SnapshotWaiting(category *Category) []Participant {
	return r.snapshot(func(p *Participant) bool {
		if p.Status != StatusWaiting {
			return false
		}
		return category == nil || p.Category == *category
	})
}

// SnapshotActive returns every participant still eligible for future rounds
// (Waiting or InRoom), in insertion order. The scheduler needs the full active
// pool to tell "unmatched this round" apart from "exhausted for good".
func (r *Registry) SnapshotActive() []Participant {
	return r.snapshot(func(p *Participant) bool { return p.Active() })
}

// SnapshotAll returns every registered participant in insertion order.
func (r *Registry) SnapshotAll() []Participant {
	return r.snapshot(func(*Participant) bool { return true })
}

func (r *Registry) snapshot(keep func(*Participant) bool) []Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Participant
	for _, id := range r.order {
		if p := r.byID[id]; keep(p) {
			out = append(out, *p)
		}
	}
	return out
}
