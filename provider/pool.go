package provider

import (
	"context"
	"log/slog"
	"sync"

	"dating-lab/contract"
	"dating-lab/domain"
)

// Pool recycles pre-provisioned room handles in front of a real provider.
// CreateRoom takes from the pool when possible, validating the handle first
// since pooled handles can be revoked behind our back. CloseRoom returns the
// handle for reuse instead of deactivating it. The pool falls back to
// on-demand provisioning when empty.
type Pool struct {
	mu    sync.Mutex
	log   *slog.Logger
	inner contract.VideoRoomProvider
	idle  []domain.RoomID
}

func NewPool(log *slog.Logger, inner contract.VideoRoomProvider, warm []domain.RoomID) *Pool {
	return &Pool{log: log, inner: inner, idle: warm}
}

func (p *Pool) CreateRoom(ctx context.Context) (domain.RoomID, error) {
	for {
		roomID, ok := p.take()
		if !ok {
			break
		}
		live, err := p.inner.ValidateRoom(ctx, roomID)
		if err != nil {
			p.log.Warn("Pool handle validation failed, discarding", "room", string(roomID), "error", err)
			continue
		}
		if !live {
			p.log.Debug("Pool handle revoked, discarding", "room", string(roomID))
			continue
		}
		return roomID, nil
	}
	return p.inner.CreateRoom(ctx)
}

func (p *Pool) CloseRoom(_ context.Context, id domain.RoomID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.idle = append(p.idle, id)
	return nil
}

func (p *Pool) ValidateRoom(ctx context.Context, id domain.RoomID) (bool, error) {
	return p.inner.ValidateRoom(ctx, id)
}

// IdleCount is exposed for the operator monitoring surface.
func (p *Pool) IdleCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}

func (p *Pool) take() (domain.RoomID, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.idle) == 0 {
		return "", false
	}
	roomID := p.idle[0]
	p.idle = p.idle[1:]
	return roomID, true
}
