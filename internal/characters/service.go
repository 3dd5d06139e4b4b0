package characters

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"stamp-backend/internal/shared/storage/object"
)

var allowedMimeTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
}

// Service contains business logic for characters.
type Service struct {
	Store object.ObjectStore
	Repo  Repo
}

// Upload saves the image to object storage and records the character.
func (s *Service) Upload(ctx context.Context, fileName string, r io.Reader) (Character, error) {
	if fileName == "" {
		return Character{}, ErrInvalidInput
	}

	id := uuid.NewString()
	storageKey, size, mimeType, err := s.Store.Save(ctx, "characters/"+id, fileName, r)
	if err != nil {
		return Character{}, err
	}
	if _, ok := allowedMimeTypes[mimeType]; !ok {
		return Character{}, ErrUnsupportedType
	}

	ch := Character{
		ID:         id,
		FileName:   fileName,
		MimeType:   mimeType,
		SizeBytes:  size,
		StorageKey: storageKey,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, ch); err != nil {
		return Character{}, err
	}

	return ch, nil
}

// Get returns a character by ID.
func (s *Service) Get(ctx context.Context, id string) (Character, error) {
	if id == "" {
		return Character{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, id)
}
