package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stamp-backend/internal/characters"
	"stamp-backend/internal/packs"
	"stamp-backend/internal/shared/config"
	"stamp-backend/internal/shared/metrics"
	"stamp-backend/internal/shared/server/middleware"
	"stamp-backend/internal/shared/server/respond"
	"stamp-backend/internal/styles"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config            config.Config
	CharactersHandler *characters.Handler
	PacksHandler      *packs.Handler
	StylesHandler     *styles.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())

	if deps.CharactersHandler != nil {
		deps.CharactersHandler.RegisterRoutes(api)
	}
	if deps.PacksHandler != nil {
		deps.PacksHandler.RegisterRoutes(api)
	}
	if deps.StylesHandler != nil {
		deps.StylesHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
