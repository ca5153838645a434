package domain

import (
	"sort"
	"sync"

	"dating-lab/errors"
)

// PairKey is the canonical order-independent identity of an unordered pair.
type PairKey struct {
	A, B ParticipantID
}

// KeyOf canonicalizes by sorting the two ids, so (a,b) and (b,a) hit the same record.
func KeyOf(a, b ParticipantID) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey{A: a, B: b}
}

// PairingRecord is one meeting between two participants.
type PairingRecord struct {
	Pair  PairKey
	Round int
}

// History records which pairs have already met, enforcing the no-repeat
// guarantee. Lookups are order-independent. Safe for concurrent reads.
type History struct {
	mu      sync.RWMutex
	rounds  map[PairKey]map[int]struct{}
	lastMet map[PairKey]int
	records []PairingRecord // kept in recording order for snapshots
}

func NewHistory() *History {
	return &History{
		rounds:  make(map[PairKey]map[int]struct{}),
		lastMet: make(map[PairKey]int),
	}
}

func (h *History) HasMet(a, b ParticipantID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.lastMet[KeyOf(a, b)]
	return ok
}

// LastMetRound returns the most recent round in which the pair met,
// or -1 if they never did. Feeds the least-recently-met fallback.
func (h *History) LastMetRound(a, b ParticipantID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	round, ok := h.lastMet[KeyOf(a, b)]
	if !ok {
		return -1
	}
	return round
}

// Record stores one meeting. Recording the exact same pair and round twice
// returns ErrAlreadyRecorded: the guard protects against duplicate event
// delivery, and callers treat it as a no-op success.
func (h *History) Record(a, b ParticipantID, round int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	key := KeyOf(a, b)
	seen, ok := h.rounds[key]
	if !ok {
		seen = make(map[int]struct{})
		h.rounds[key] = seen
	}
	if _, dup := seen[round]; dup {
		return errors.ErrAlreadyRecorded
	}
	seen[round] = struct{}{}
	if last, ok := h.lastMet[key]; !ok || round > last {
		h.lastMet[key] = round
	}
	h.records = append(h.records, PairingRecord{Pair: key, Round: round})
	return nil
}

// PartnersOf returns every participant id this one has already met,
// sorted for determinism.
func (h *History) PartnersOf(id ParticipantID) []ParticipantID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var partners []ParticipantID
	for key := range h.lastMet {
		switch id {
		case key.A:
			partners = append(partners, key.B)
		case key.B:
			partners = append(partners, key.A)
		}
	}
	sort.Slice(partners, func(i, j int) bool { return partners[i] < partners[j] })
	return partners
}

// Records returns the full meeting log in recording order.
func (h *History) Records() []PairingRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]PairingRecord, len(h.records))
	copy(out, h.records)
	return out
}
