package packs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"stamp-backend/internal/characters"
	"stamp-backend/internal/genai"
	"stamp-backend/internal/imaging"
	"stamp-backend/internal/shared/metrics"
	"stamp-backend/internal/shared/storage/object"
	"stamp-backend/internal/shared/telemetry"
	"stamp-backend/internal/styles"
)

const (
	defaultStampCount = 8
	stampAspectRatio  = "1:1"
)

var allowedStampCounts = map[int]struct{}{8: {}, 16: {}, 24: {}, 32: {}, 40: {}}

// Service contains business logic for sticker packs.
type Service struct {
	Repo          Repo
	CharacterRepo characters.Repo
	Store         object.ObjectStore
	Describer     genai.Describer
	Generator     genai.Generator
	Styles        *styles.Registry
}

// Create validates the request, records a queued pack, and kicks off
// asynchronous sequential generation.
func (s *Service) Create(ctx context.Context, characterID string, captions []string, styleName string, count int) (Pack, error) {
	if strings.TrimSpace(characterID) == "" {
		return Pack{}, fmt.Errorf("%w: characterId is required", ErrInvalidInput)
	}

	cleaned := make([]string, 0, len(captions))
	for _, caption := range captions {
		if trimmed := strings.TrimSpace(caption); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return Pack{}, fmt.Errorf("%w: at least one caption is required", ErrInvalidInput)
	}

	if count == 0 {
		count = defaultStampCount
	}
	if _, ok := allowedStampCounts[count]; !ok {
		return Pack{}, fmt.Errorf("%w: count must be one of 8, 16, 24, 32, 40", ErrInvalidInput)
	}

	preset, ok := s.Styles.Get(styleName)
	if !ok {
		return Pack{}, fmt.Errorf("%w: %q", ErrUnknownStyle, styleName)
	}

	if _, err := s.CharacterRepo.GetByID(ctx, characterID); err != nil {
		if err == characters.ErrNotFound {
			return Pack{}, ErrCharacterNotFound
		}
		return Pack{}, err
	}

	if count > len(cleaned) {
		count = len(cleaned)
	}

	items := make([]Item, 0, count)
	for i := 0; i < count; i++ {
		items = append(items, Item{
			Index:    i + 1,
			Caption:  cleaned[i],
			FileName: fmt.Sprintf("sticker_%02d.png", i+1),
			Status:   ItemStatusPending,
		})
	}

	pack := Pack{
		ID:          uuid.NewString(),
		CharacterID: characterID,
		Style:       preset.Name,
		Status:      StatusQueued,
		Items:       items,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, pack); err != nil {
		return Pack{}, err
	}

	go s.processAsync(backgroundWithRequestID(ctx), pack.ID)

	return pack, nil
}

// Get returns a pack by ID.
func (s *Service) Get(ctx context.Context, packID string) (Pack, error) {
	if packID == "" {
		return Pack{}, fmt.Errorf("%w: packId is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, packID)
}

func (s *Service) processAsync(ctx context.Context, packID string) {
	defer func() {
		if r := recover(); r != nil {
			s.failPack(ctx, packID, fmt.Errorf("panic: %v", r))
		}
	}()

	startedAt := time.Now().UTC()
	if err := s.Repo.UpdateStatus(ctx, packID, StatusProcessing, "", &startedAt, nil); err != nil {
		s.failPack(ctx, packID, fmt.Errorf("set processing failed: %w", err))
		return
	}

	pack, err := s.Repo.GetByID(ctx, packID)
	if err != nil {
		s.failPack(ctx, packID, fmt.Errorf("pack lookup: %w", err))
		return
	}
	metrics.IncPackStarted()
	telemetry.Info("pack.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"pack_id":           pack.ID,
		"character_id":      pack.CharacterID,
		"status":            StatusProcessing,
		"status_transition": "queued->processing",
		"items":             len(pack.Items),
	})

	if s.CharacterRepo == nil || s.Store == nil {
		s.failPack(ctx, packID, fmt.Errorf("missing character store dependencies"))
		return
	}
	if s.Describer == nil || s.Generator == nil {
		s.failPack(ctx, packID, fmt.Errorf("missing genai client"))
		return
	}

	character, err := s.CharacterRepo.GetByID(ctx, pack.CharacterID)
	if err != nil {
		s.failPack(ctx, packID, fmt.Errorf("character lookup id=%s: %w", pack.CharacterID, err))
		return
	}

	baseImage, err := s.loadObject(ctx, character.StorageKey)
	if err != nil {
		s.failPack(ctx, packID, fmt.Errorf("load character image: %w", err))
		return
	}

	stylePrompt := ""
	if preset, ok := s.Styles.Get(pack.Style); ok {
		stylePrompt = preset.Prompt
	}

	// One blocking describe+generate pair per caption; item failures do not
	// stop the batch.
	for _, item := range pack.Items {
		s.generateItem(ctx, pack, item, baseImage, character.MimeType, stylePrompt)
	}

	completedAt := time.Now().UTC()
	if err := s.Repo.UpdateStatus(ctx, packID, StatusCompleted, "", nil, &completedAt); err != nil {
		s.failPack(ctx, packID, fmt.Errorf("set completed failed: %w", err))
		return
	}
	metrics.IncPackCompleted()

	final, err := s.Repo.GetByID(ctx, packID)
	if err != nil {
		final = pack
	}
	telemetry.Info("pack.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"pack_id":           packID,
		"character_id":      pack.CharacterID,
		"status":            StatusCompleted,
		"status_transition": "processing->completed",
		"generated":         final.GeneratedCount(),
		"items":             len(pack.Items),
	})
}

func (s *Service) generateItem(ctx context.Context, pack Pack, item Item, baseImage []byte, baseMimeType, stylePrompt string) {
	start := time.Now()

	description, err := s.Describer.DescribeImage(ctx, baseImage, baseMimeType)
	if err != nil {
		telemetry.Error("pack.describe.failed", map[string]any{
			"request_id": requestIDFromContext(ctx),
			"pack_id":    pack.ID,
			"index":      item.Index,
			"err":        err.Error(),
		})
		description = genai.DefaultCharacterDescription
	}

	prompt := genai.BuildStampPrompt(description, item.Caption, stylePrompt)

	generated, err := s.Generator.GenerateImage(ctx, genai.GenerateInput{
		Prompt:      prompt,
		AspectRatio: stampAspectRatio,
	})
	if err != nil {
		s.failItem(ctx, pack.ID, item, fmt.Sprintf("generation failed: %v", err))
		return
	}

	decoded, err := imaging.Decode(generated.Data)
	if err != nil {
		s.failItem(ctx, pack.ID, item, fmt.Sprintf("generated image unreadable: %v", err))
		return
	}

	resized := imaging.Fit(decoded, imaging.StickerMaxWidth, imaging.StickerMaxHeight)
	encoded, err := imaging.EncodePNG(resized)
	if err != nil {
		s.failItem(ctx, pack.ID, item, fmt.Sprintf("encode failed: %v", err))
		return
	}

	key := path.Join("packs", pack.ID, item.FileName)
	if _, err := s.Store.SaveWithKey(ctx, key, "image/png", bytes.NewReader(encoded)); err != nil {
		s.failItem(ctx, pack.ID, item, fmt.Sprintf("store failed: %v", err))
		return
	}

	item.Status = ItemStatusGenerated
	item.Error = ""
	item.StorageKey = key
	if err := s.Repo.UpdateItem(ctx, pack.ID, item); err != nil {
		telemetry.Error("pack.item.update_failed", map[string]any{
			"request_id": requestIDFromContext(ctx),
			"pack_id":    pack.ID,
			"index":      item.Index,
			"err":        err.Error(),
		})
		return
	}
	metrics.IncStampGenerated()
	metrics.ObserveStampDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)
}

func (s *Service) failItem(ctx context.Context, packID string, item Item, message string) {
	telemetry.Error("pack.item.failed", map[string]any{
		"request_id": requestIDFromContext(ctx),
		"pack_id":    packID,
		"index":      item.Index,
		"caption":    item.Caption,
		"err":        message,
	})
	metrics.IncStampFailed()

	item.Status = ItemStatusFailed
	item.Error = message
	if err := s.Repo.UpdateItem(ctx, packID, item); err != nil {
		telemetry.Error("pack.item.update_failed", map[string]any{
			"request_id": requestIDFromContext(ctx),
			"pack_id":    packID,
			"index":      item.Index,
			"err":        err.Error(),
		})
	}
}

func (s *Service) failPack(ctx context.Context, packID string, cause error) {
	telemetry.Error("pack.failed", map[string]any{
		"request_id": requestIDFromContext(ctx),
		"pack_id":    packID,
		"err":        cause.Error(),
	})
	metrics.IncPackFailed()

	completedAt := time.Now().UTC()
	if err := s.Repo.UpdateStatus(ctx, packID, StatusFailed, cause.Error(), nil, &completedAt); err != nil {
		telemetry.Error("pack.fail_update_failed", map[string]any{
			"request_id": requestIDFromContext(ctx),
			"pack_id":    packID,
			"err":        err.Error(),
		})
	}
}

func (s *Service) loadObject(ctx context.Context, storageKey string) ([]byte, error) {
	reader, err := s.Store.Open(ctx, storageKey)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}
