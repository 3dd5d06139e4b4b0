package packs

import (
	"context"
	"time"
)

// Repo defines persistence operations for packs.
type Repo interface {
	Create(ctx context.Context, p Pack) error
	GetByID(ctx context.Context, id string) (Pack, error)
	UpdateStatus(ctx context.Context, id, status, errMsg string, startedAt, completedAt *time.Time) error
	UpdateItem(ctx context.Context, packID string, item Item) error
}
