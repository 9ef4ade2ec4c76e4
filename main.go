package main

import (
	"context"
	"log"

	"github.com/LovationAdmin/tripchalo-api/config"
	"github.com/LovationAdmin/tripchalo-api/middleware"
	"github.com/LovationAdmin/tripchalo-api/routes"
	"github.com/LovationAdmin/tripchalo-api/services"
	"github.com/LovationAdmin/tripchalo-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Println("Failed to read .env file, using environment variables:", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	logger, err := utils.NewLogger(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	store, closeStore, err := openStore(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer closeStore()

	model, err := newTextModel(context.Background(), cfg.AI, logger)
	if err != nil {
		// The API still serves everything but generation.
		logger.Warn("AI provider unavailable, itinerary generation will fail", zap.Error(err))
	}

	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	generator := services.NewItineraryGenerator(model, cfg.AI.Timeout, logger.Named("generator"))

	router := routes.NewRouter(routes.Deps{
		Users:          services.NewUserService(store, store, tokens, logger.Named("users")),
		Trips:          services.NewTripService(store, generator, logger.Named("trips")),
		Tokens:         tokens,
		Limiter:        middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		AllowedOrigins: lo.Compact([]string{cfg.FrontendURL}),
		Logger:         logger.Named("http"),
	})

	utils.LogStartup(logger, "tripchalo-api", routes.Version, cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}

type appStore interface {
	services.TripStore
	services.UserStore
}

// openStore connects to Postgres and migrates, or returns the in-memory store
// for DATABASE_URL=memory://.
func openStore(dbURL string, logger *zap.Logger) (appStore, func(), error) {
	if dbURL == config.MemoryDatabaseURL {
		logger.Warn("using in-memory store, data is lost on restart")
		return services.NewMemoryStore(), func() {}, nil
	}

	db, err := config.InitDB(dbURL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("database connected")

	if err := config.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return services.NewPostgresStore(db), func() { db.Close() }, nil
}

// newTextModel picks the generation provider. A nil model with an error is
// returned when the provider cannot be built.
func newTextModel(ctx context.Context, ai config.AIConfig, logger *zap.Logger) (services.TextModel, error) {
	switch ai.Provider {
	case config.ProviderClaude:
		return services.NewClaudeAIService(ai.AnthropicAPIKey, ai.ClaudeModel, ai.Timeout, logger.Named("claude")), nil
	default:
		gemini, err := services.NewGeminiService(ctx, ai.GeminiAPIKey, ai.GeminiModel, logger.Named("gemini"))
		if err != nil {
			return nil, err
		}
		return gemini, nil
	}
}
