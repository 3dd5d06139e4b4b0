package bootstrap

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"stamp-backend/internal/characters"
	"stamp-backend/internal/genai"
	"stamp-backend/internal/genai/gemini"
	openaigen "stamp-backend/internal/genai/openai"
	"stamp-backend/internal/packs"
	"stamp-backend/internal/shared/config"
	"stamp-backend/internal/shared/server"
	"stamp-backend/internal/shared/storage/object"
	localstore "stamp-backend/internal/shared/storage/object/local"
	"stamp-backend/internal/styles"
)

// App holds shared dependencies.
type App struct {
	Config            config.Config
	Router            *gin.Engine
	Store             object.ObjectStore
	GenAI             genai.Client
	StyleRegistry     *styles.Registry
	CharactersRepo    characters.Repo
	PacksRepo         packs.Repo
	CharactersService *characters.Service
	PacksService      *packs.Service
	CharactersHandler *characters.Handler
	PacksHandler      *packs.Handler
	StylesHandler     *styles.Handler
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	store := localstore.New(cfg.LocalStoreDir)

	registry, err := styles.LoadRegistry(cfg.StylePresetsPath)
	if err != nil {
		return nil, err
	}

	genaiClient, err := buildGenAI(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:        cfg,
		Store:         store,
		GenAI:         genaiClient,
		StyleRegistry: registry,
	}

	app.CharactersRepo = characters.NewMemoryRepo()
	app.PacksRepo = packs.NewMemoryRepo()

	app.CharactersService = &characters.Service{
		Store: store,
		Repo:  app.CharactersRepo,
	}
	app.PacksService = &packs.Service{
		Repo:          app.PacksRepo,
		CharacterRepo: app.CharactersRepo,
		Store:         store,
		Describer:     genaiClient,
		Generator:     genaiClient,
		Styles:        registry,
	}

	app.CharactersHandler = characters.NewHandler(app.CharactersService)
	app.PacksHandler = packs.NewHandler(app.PacksService, store)
	app.StylesHandler = styles.NewHandler(registry)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:            app.Config,
		CharactersHandler: app.CharactersHandler,
		PacksHandler:      app.PacksHandler,
		StylesHandler:     app.StylesHandler,
	})

	return app, nil
}

func buildGenAI(cfg config.Config) (genai.Client, error) {
	switch cfg.GenAIProvider {
	case "openai":
		client, err := openaigen.NewClient(cfg.OpenAIAPIKey, cfg.VisionModel, cfg.ImageModel)
		if err != nil {
			return nil, fmt.Errorf("build openai client: %w", err)
		}
		return client, nil
	case "gemini":
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			// Without a key, generation requests fail with ErrNotConfigured.
			return genai.PlaceholderClient{}, nil
		}
		client, err := gemini.NewClient(cfg.GeminiAPIKey, cfg.VisionModel, cfg.ImageModel)
		if err != nil {
			return nil, fmt.Errorf("build gemini client: %w", err)
		}
		return client, nil
	default:
		return genai.PlaceholderClient{}, nil
	}
}
