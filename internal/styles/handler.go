package styles

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stamp-backend/internal/shared/server/respond"
)

// Handler exposes the style presets.
type Handler struct {
	Registry *Registry
}

// NewHandler constructs a Handler.
func NewHandler(registry *Registry) *Handler {
	return &Handler{Registry: registry}
}

// RegisterRoutes attaches style routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/styles", h.list)
}

func (h *Handler) list(c *gin.Context) {
	respond.JSON(c, http.StatusOK, gin.H{
		"default": DefaultStyle,
		"presets": h.Registry.List(),
	})
}
