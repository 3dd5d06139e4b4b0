package characters

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Character
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Character),
	}
}

// Create stores a character.
func (r *MemoryRepo) Create(ctx context.Context, ch Character) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[ch.ID] = ch
	return nil
}

// GetByID returns a character by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Character, error) {
	if err := ctx.Err(); err != nil {
		return Character{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.data[id]
	if !ok {
		return Character{}, ErrNotFound
	}
	return ch, nil
}
