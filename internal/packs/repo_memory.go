package packs

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Pack
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Pack),
	}
}

// Create stores a pack.
func (r *MemoryRepo) Create(ctx context.Context, p Pack) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[p.ID] = clonePack(p)
	return nil
}

// GetByID returns a pack by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Pack, error) {
	if err := ctx.Err(); err != nil {
		return Pack{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.data[id]
	if !ok {
		return Pack{}, ErrNotFound
	}
	return clonePack(p), nil
}

// UpdateStatus transitions a pack's status and timestamps.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, id, status, errMsg string, startedAt, completedAt *time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	p.Status = status
	p.Error = errMsg
	if startedAt != nil {
		p.StartedAt = startedAt
	}
	if completedAt != nil {
		p.CompletedAt = completedAt
	}
	r.data[id] = p
	return nil
}

// UpdateItem replaces the item with the same index.
func (r *MemoryRepo) UpdateItem(ctx context.Context, packID string, item Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[packID]
	if !ok {
		return ErrNotFound
	}
	for i := range p.Items {
		if p.Items[i].Index == item.Index {
			p.Items[i] = item
			r.data[packID] = p
			return nil
		}
	}
	return ErrNotFound
}

func clonePack(p Pack) Pack {
	out := p
	out.Items = append([]Item(nil), p.Items...)
	return out
}
