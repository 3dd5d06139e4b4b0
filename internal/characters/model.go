package characters

import "time"

// Character represents an uploaded base character image.
type Character struct {
	ID         string
	FileName   string
	MimeType   string
	SizeBytes  int64
	StorageKey string
	CreatedAt  time.Time
}
