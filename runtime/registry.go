package runtime

import (
	"sync"

	"dating-lab/contract"
	"dating-lab/domain"
)

type Set map[domain.ParticipantID]struct{}

// SinkRegistry tracks which connected participants listen to which event's
// notifications. Connections (sinks) are managed in a single place even when
// a participant watches several events.
type SinkRegistry struct {
	mu           sync.RWMutex
	sessions     map[domain.ParticipantID]contract.EventSink
	eventMembers map[domain.EventID]Set
}

func NewSinkRegistry() *SinkRegistry {
	return &SinkRegistry{
		sessions:     make(map[domain.ParticipantID]contract.EventSink),
		eventMembers: make(map[domain.EventID]Set),
	}
}

// GetSinksForEvent resolves the active sinks subscribed to an event.
// Returns nil if the event has no listeners.
func (r *SinkRegistry) GetSinksForEvent(eventID domain.EventID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.eventMembers[eventID]
	if !ok {
		return nil
	}
	var activeSinks []contract.EventSink
	for participantID := range members {
		if sink, exists := r.sessions[participantID]; exists {
			activeSinks = append(activeSinks, sink)
		}
	}
	return activeSinks
}

// Subscribe registers a participant's connection and attaches it to an event.
func (r *SinkRegistry) Subscribe(participantID domain.ParticipantID, eventID domain.EventID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[participantID] = sink

	if _, ok := r.eventMembers[eventID]; !ok {
		r.eventMembers[eventID] = make(Set)
	}
	r.eventMembers[eventID][participantID] = struct{}{}
}

// Unsubscribe drops a participant's connection and event membership.
// Empty member sets are removed to avoid leaking event entries over time.
func (r *SinkRegistry) Unsubscribe(participantID domain.ParticipantID, eventID domain.EventID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, participantID)

	if members, ok := r.eventMembers[eventID]; ok {
		delete(members, participantID)
		if len(members) == 0 {
			delete(r.eventMembers, eventID)
		}
	}
}
