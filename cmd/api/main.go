package main

import (
	"context"
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/jobdeck/jobdeck/internal/actions"
	"github.com/jobdeck/jobdeck/internal/config"
	"github.com/jobdeck/jobdeck/internal/handlers"
	"github.com/jobdeck/jobdeck/internal/logger"
	"github.com/jobdeck/jobdeck/internal/services"
	"github.com/jobdeck/jobdeck/internal/storage"
	"github.com/jobdeck/jobdeck/internal/store"
)

func main() {
	// 1. Environment variables (.env is optional outside local dev)
	_ = godotenv.Load()
	cfg := config.Load()

	log := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer log.Sync()

	ctx := context.Background()

	// 2. Durable document storage
	docs, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open storage", logger.Error(err))
	}
	defer docs.Close()
	log.Info("storage ready", logger.String("backend", cfg.StorageBackend))

	// 3. Stores
	recordStore := store.NewRecordStore(docs)
	schemaStore := store.NewSchemaStore(docs)

	// 4. Assistant (optional — endpoint answers 503 without a key)
	var assistant *services.AssistantService
	if cfg.GeminiAPIKey != "" {
		assistant, err = services.NewAssistantService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log)
		if err != nil {
			log.Fatal("failed to create assistant client", logger.Error(err))
		}
		log.Info("assistant connected", logger.String("model", cfg.GeminiModel))
	} else {
		log.Warn("GEMINI_API_KEY not set, assistant endpoint disabled")
	}

	// 5. Pipeline + services
	applicator := actions.NewApplicator(recordStore, schemaStore, log)
	importer := services.NewImportService(recordStore, log)

	// 6. Handlers
	jobHandler := handlers.NewJobHandler(recordStore, log)
	fieldHandler := handlers.NewFieldHandler(schemaStore, log)
	assistantHandler := handlers.NewAssistantHandler(assistant, applicator, recordStore, schemaStore, log)
	transferHandler := handlers.NewTransferHandler(importer, recordStore, schemaStore, log)

	// 7. Router & CORS
	r := gin.Default()
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsCfg))

	api := r.Group("/api/v1")
	{
		api.GET("/health", handlers.HealthCheck)

		api.GET("/jobs", jobHandler.ListJobs)
		api.POST("/jobs", jobHandler.CreateJob)
		api.GET("/jobs/:id", jobHandler.GetJob)
		api.PATCH("/jobs/:id", jobHandler.UpdateJob)
		api.DELETE("/jobs/:id", jobHandler.DeleteJob)
		api.PUT("/jobs/:id/status", jobHandler.SetStatus)
		api.POST("/jobs/:id/tags", jobHandler.AddTag)
		api.POST("/jobs/:id/notes", jobHandler.AddNote)
		api.PUT("/jobs/:id/notes", jobHandler.SetNote)

		api.GET("/fields", fieldHandler.ListFields)
		api.POST("/fields", fieldHandler.UpsertField)

		api.POST("/assistant", assistantHandler.Handle)

		api.POST("/import", transferHandler.ImportCSV)
		api.GET("/export", transferHandler.Export)
	}

	log.Info("server starting", logger.String("addr", cfg.ListenAddr))
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal("server failed", logger.Error(err))
	}
}

func openStorage(ctx context.Context, cfg *config.Config, log logger.Logger) (storage.DocumentStore, error) {
	switch cfg.StorageBackend {
	case "postgres":
		return storage.NewPostgresStore(cfg.PostgresDSN, log)
	case "memory":
		log.Warn("memory storage selected, nothing will survive a restart")
		return storage.NewMemoryStore(), nil
	case "redis":
		return storage.NewRedisStore(ctx, &redis.Options{
			Addr:         cfg.RedisAddr,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  cfg.RedisTimeout,
			ReadTimeout:  cfg.RedisTimeout,
			WriteTimeout: cfg.RedisTimeout,
		}, log)
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want redis, postgres or memory)", cfg.StorageBackend)
	}
}
