// Package rooms maps scheduled pairs onto concrete video rooms obtained from
// the external provisioning provider, and tracks room lifecycle.
package rooms

import (
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"sync"

	"dating-lab/contract"
	"dating-lab/domain"
	"dating-lab/errors"
)

// Manager owns the Room records of one event. All participant status flips it
// performs are transactional: a failed allocation never leaves someone InRoom
// without a room, nor a room Open without exactly two occupants.
type Manager struct {
	mu       sync.RWMutex
	log      *slog.Logger
	provider contract.VideoRoomProvider
	registry *domain.Registry
	rooms    map[domain.RoomID]*domain.Room
}

func NewManager(log *slog.Logger, provider contract.VideoRoomProvider, registry *domain.Registry) *Manager {
	return &Manager{
		log:      log,
		provider: provider,
		registry: registry,
		rooms:    make(map[domain.RoomID]*domain.Room),
	}
}

// Provision requests a fresh room handle, retrying once. The provider is a
// remote service; this is the only I/O of the allocation path and callers run
// it without holding their event lock.
func (m *Manager) Provision(ctx context.Context) (domain.RoomID, error) {
	roomID, err := m.provider.CreateRoom(ctx)
	if err == nil {
		return roomID, nil
	}
	m.log.Warn("Room provisioning failed, retrying once", "error", err)
	roomID, err = m.provider.CreateRoom(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrRoomProvisioningFailed, err)
	}
	return roomID, nil
}

// Open records a provisioned room and moves both occupants to InRoom.
// If the second transition fails the first is rolled back, so state stays
// consistent on any exit path.
func (m *Manager) Open(roomID domain.RoomID, a, b domain.ParticipantID, round int) error {
	if err := m.registry.MarkInRoom(a, roomID); err != nil {
		return err
	}
	if err := m.registry.MarkInRoom(b, roomID); err != nil {
		_ = m.registry.MarkWaiting(a)
		return err
	}
	m.mu.Lock()
	m.rooms[roomID] = domain.NewRoom(roomID, a, b, round)
	m.mu.Unlock()
	return nil
}

// AllocateRoom is the one-shot path: provision then open. On provisioning
// failure both participants keep their Waiting status untouched.
func (m *Manager) AllocateRoom(ctx context.Context, a, b domain.ParticipantID, round int) (domain.RoomID, error) {
	roomID, err := m.Provision(ctx)
	if err != nil {
		return "", err
	}
	if err := m.Open(roomID, a, b, round); err != nil {
		m.Release(ctx, roomID)
		return "", err
	}
	return roomID, nil
}

// Detach is the pure half of closing: it removes the room record and flips
// occupant statuses, but performs no provider I/O, so callers may hold their
// event lock. Occupants return to Waiting, except the ids listed in departed,
// which are marked Disconnected and leave all future scheduling.
func (m *Manager) Detach(roomID domain.RoomID, departed ...domain.ParticipantID) error {
	m.mu.Lock()
	room, ok := m.rooms[roomID]
	if !ok || room.State == domain.RoomClosed {
		m.mu.Unlock()
		return errors.ErrRoomNotFound
	}
	room.State = domain.RoomClosed
	occupants := room.Occupants
	delete(m.rooms, roomID)
	m.mu.Unlock()

	gone := make(map[domain.ParticipantID]bool, len(departed))
	for _, id := range departed {
		gone[id] = true
	}
	for _, id := range occupants {
		var err error
		if gone[id] {
			err = m.registry.MarkDisconnected(id)
		} else {
			err = m.registry.MarkWaiting(id)
		}
		if err != nil && !goerrors.Is(err, errors.ErrUnknownParticipant) {
			return err
		}
	}
	return nil
}

// CloseRoom tears a room down: detach, then the best-effort provider close.
func (m *Manager) CloseRoom(ctx context.Context, roomID domain.RoomID, departed ...domain.ParticipantID) error {
	if err := m.Detach(roomID, departed...); err != nil {
		return err
	}
	m.Release(ctx, roomID)
	return nil
}

// ValidateRoom confirms with the provider that a handle is still live.
// Pre-provisioned pool handles can expire or be revoked between rounds.
func (m *Manager) ValidateRoom(ctx context.Context, roomID domain.RoomID) (bool, error) {
	return m.provider.ValidateRoom(ctx, roomID)
}

// OpenRooms returns a copy of every currently open room, in no particular order.
func (m *Manager) OpenRooms() []domain.Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		out = append(out, *room)
	}
	return out
}

// RoomOf returns the open room currently holding the participant.
func (m *Manager) RoomOf(id domain.ParticipantID) (domain.Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, room := range m.rooms {
		if room.Holds(id) {
			return *room, true
		}
	}
	return domain.Room{}, false
}

// Release is the provider-side close. Best-effort: a failure is logged and
// retried once but never blocks round advancement.
func (m *Manager) Release(ctx context.Context, roomID domain.RoomID) {
	if err := m.provider.CloseRoom(ctx, roomID); err != nil {
		m.log.Warn("Provider close failed, retrying once", "room", string(roomID), "error", err)
		if err = m.provider.CloseRoom(ctx, roomID); err != nil {
			m.log.Warn("Provider close failed again, giving up", "room", string(roomID), "error", err)
		}
	}
}
