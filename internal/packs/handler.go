package packs

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"stamp-backend/internal/shared/server/middleware"
	"stamp-backend/internal/shared/server/respond"
	"stamp-backend/internal/shared/storage/object"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc   *Service
	Store object.ObjectStore
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, store object.ObjectStore) *Handler {
	return &Handler{Svc: svc, Store: store}
}

// RegisterRoutes attaches pack routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/packs", h.create)
	rg.GET("/packs/:id", h.get)
	rg.GET("/packs/:id/items/:index/image", h.itemImage)
	rg.GET("/packs/:id/archive", h.archive)
}

type createRequest struct {
	CharacterID string   `json:"characterId"`
	Captions    []string `json:"captions"`
	Style       string   `json:"style"`
	Count       int      `json:"count"`
}

type itemResponse struct {
	Index    int    `json:"index"`
	Caption  string `json:"caption"`
	FileName string `json:"fileName"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

type packResponse struct {
	PackID      string         `json:"packId"`
	CharacterID string         `json:"characterId"`
	Style       string         `json:"style"`
	Status      string         `json:"status"`
	Error       string         `json:"error,omitempty"`
	Items       []itemResponse `json:"items"`
	CreatedAt   time.Time      `json:"createdAt"`
	StartedAt   *time.Time     `json:"startedAt,omitempty"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
}

func toResponse(p Pack) packResponse {
	items := make([]itemResponse, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, itemResponse{
			Index:    item.Index,
			Caption:  item.Caption,
			FileName: item.FileName,
			Status:   item.Status,
			Error:    item.Error,
		})
	}
	return packResponse{
		PackID:      p.ID,
		CharacterID: p.CharacterID,
		Style:       p.Style,
		Status:      p.Status,
		Error:       p.Error,
		Items:       items,
		CreatedAt:   p.CreatedAt,
		StartedAt:   p.StartedAt,
		CompletedAt: p.CompletedAt,
	}
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	pack, err := h.Svc.Create(ctx, req.CharacterID, req.Captions, req.Style, req.Count)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrUnknownStyle):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrCharacterNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "character not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create pack", nil)
		}
		return
	}

	c.Set("packId", pack.ID)
	respond.JSON(c, http.StatusAccepted, toResponse(pack))
}

func (h *Handler) get(c *gin.Context) {
	pack, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "pack not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch pack", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(pack))
}

func (h *Handler) itemImage(c *gin.Context) {
	pack, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "pack not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch pack", nil)
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "index must be a number", nil)
		return
	}

	var found *Item
	for i := range pack.Items {
		if pack.Items[i].Index == index {
			found = &pack.Items[i]
			break
		}
	}
	if found == nil || found.Status != ItemStatusGenerated {
		respond.Error(c, http.StatusNotFound, "not_found", "sticker not found", nil)
		return
	}

	reader, err := h.Store.Open(c.Request.Context(), found.StorageKey)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load sticker", nil)
		return
	}
	defer reader.Close()

	c.Header("Content-Type", "image/png")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, reader)
}

func (h *Handler) archive(c *gin.Context) {
	pack, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "pack not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch pack", nil)
		return
	}

	data, err := BuildArchive(c.Request.Context(), h.Store, pack)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotReady):
			respond.Error(c, http.StatusConflict, "not_ready", "pack is still generating", nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "no stickers were generated", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to build archive", nil)
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ArchiveFileName))
	c.Data(http.StatusOK, "application/zip", data)
}
