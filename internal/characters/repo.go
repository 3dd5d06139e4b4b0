package characters

import "context"

// Repo defines persistence operations for characters.
type Repo interface {
	Create(ctx context.Context, ch Character) error
	GetByID(ctx context.Context, id string) (Character, error)
}
