package characters

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stamp-backend/internal/shared/server/respond"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches character routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/characters", h.upload)
	rg.GET("/characters/:id", h.get)
}

type characterResponse struct {
	CharacterID string    `json:"characterId"`
	FileName    string    `json:"fileName"`
	MimeType    string    `json:"mimeType"`
	SizeBytes   int64     `json:"sizeBytes"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

func toResponse(ch Character) characterResponse {
	return characterResponse{
		CharacterID: ch.ID,
		FileName:    ch.FileName,
		MimeType:    ch.MimeType,
		SizeBytes:   ch.SizeBytes,
		UploadedAt:  ch.CreatedAt,
	}
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	ch, err := h.Svc.Upload(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrUnsupportedType):
			respond.Error(c, http.StatusBadRequest, "validation_error", "only png and jpeg images are supported", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to upload character", nil)
		}
		return
	}

	c.Set("characterId", ch.ID)
	respond.JSON(c, http.StatusCreated, toResponse(ch))
}

func (h *Handler) get(c *gin.Context) {
	ch, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "character not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch character", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(ch))
}
