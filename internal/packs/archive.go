package packs

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"

	"stamp-backend/internal/shared/storage/object"
)

// ArchiveFileName is the download name for a pack archive.
const ArchiveFileName = "line_stamps.zip"

// BuildArchive assembles a ZIP of the pack's generated stickers. The pack must
// be finished; failed items are skipped and a pack with nothing generated
// yields ErrNotFound.
func BuildArchive(ctx context.Context, store object.ObjectStore, pack Pack) ([]byte, error) {
	switch pack.Status {
	case StatusCompleted, StatusFailed:
	default:
		return nil, ErrNotReady
	}
	if pack.GeneratedCount() == 0 {
		return nil, ErrNotFound
	}

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)

	for _, item := range pack.Items {
		if item.Status != ItemStatusGenerated {
			continue
		}
		entry, err := writer.Create(item.FileName)
		if err != nil {
			return nil, fmt.Errorf("zip entry %s: %w", item.FileName, err)
		}
		if err := copyObject(ctx, store, item.StorageKey, entry); err != nil {
			return nil, fmt.Errorf("zip entry %s: %w", item.FileName, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

func copyObject(ctx context.Context, store object.ObjectStore, storageKey string, w io.Writer) error {
	reader, err := store.Open(ctx, storageKey)
	if err != nil {
		return err
	}
	defer reader.Close()
	_, err = io.Copy(w, reader)
	return err
}
