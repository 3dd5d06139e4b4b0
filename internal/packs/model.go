package packs

import "time"

const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

const (
	ItemStatusPending   = "pending"
	ItemStatusGenerated = "generated"
	ItemStatusFailed    = "failed"
)

// Item is one caption slot in a pack. FileName is unique within the pack and
// doubles as the ZIP entry name.
type Item struct {
	Index      int
	Caption    string
	FileName   string
	Status     string
	Error      string
	StorageKey string
}

// Pack represents one batch generation request.
type Pack struct {
	ID          string
	CharacterID string
	Style       string
	Status      string
	Error       string
	Items       []Item
	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// GeneratedCount returns the number of successfully generated items.
func (p Pack) GeneratedCount() int {
	n := 0
	for _, item := range p.Items {
		if item.Status == ItemStatusGenerated {
			n++
		}
	}
	return n
}
