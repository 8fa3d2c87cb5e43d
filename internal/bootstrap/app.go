package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"dealscope-backend/internal/analyses"
	dealauth "dealscope-backend/internal/auth"
	"dealscope-backend/internal/chats"
	"dealscope-backend/internal/generations"
	"dealscope-backend/internal/history"
	"dealscope-backend/internal/llm"
	"dealscope-backend/internal/llm/gemini"
	"dealscope-backend/internal/shared/config"
	"dealscope-backend/internal/shared/server"
	"dealscope-backend/internal/shared/storage/db"
	"dealscope-backend/internal/shared/storage/object"
	localstore "dealscope-backend/internal/shared/storage/object/local"
	s3store "dealscope-backend/internal/shared/storage/object/s3"
	"dealscope-backend/internal/shared/telemetry"
	"dealscope-backend/internal/users"
)

const autosaveDelay = 2 * time.Second

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore

	History *history.Store
	LLM     llm.Client

	UsersRepo    users.Repo
	UsersService *users.Service

	AnalysesService   *analyses.Service
	ChatService       *chats.Service
	GenerationService *generations.Service

	AnalysisHandler   *analyses.Handler
	ChatHandler       *chats.Handler
	GenerationHandler *generations.Handler
	HistoryHandler    *history.Handler
	AuthHandler       *dealauth.Handler
	GoogleAuth        *dealauth.GoogleService
	Registry          *dealauth.Registry

	unsubscribe func()
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	histStore := buildHistory(ctx, cfg, sqlDB)

	llmClient, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:  cfg,
		DB:      sqlDB,
		Store:   store,
		History: histStore,
		LLM:     llmClient,
	}

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:            app.Config,
		AnalysisHandler:   app.AnalysisHandler,
		ChatHandler:       app.ChatHandler,
		GenerationHandler: app.GenerationHandler,
		HistoryHandler:    app.HistoryHandler,
		AuthHandler:       app.AuthHandler,
		GoogleAuth:        app.GoogleAuth,
	})

	return app, nil
}

// Close releases background resources.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.ChatService != nil && a.ChatService.Autosave != nil {
		a.ChatService.Autosave.Stop()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; history runs on the local fallback only")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; history runs on the local fallback only: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: migrations failed; history runs on the local fallback only: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// buildHistory assembles the two-tier store: Postgres primary when available,
// Redis fallback when configured, in-memory fallback otherwise.
func buildHistory(ctx context.Context, cfg config.Config, sqlDB *sql.DB) *history.Store {
	var primary history.Backend
	if sqlDB != nil {
		primary = &history.PGBackend{DB: sqlDB}
	}

	var fallback history.Backend
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		redisBackend, err := history.NewRedisBackend(ctx, cfg.RedisAddr)
		if err != nil {
			telemetry.Warn("bootstrap.redis_unavailable", map[string]any{
				"addr":  cfg.RedisAddr,
				"error": err.Error(),
			})
		} else {
			fallback = redisBackend
		}
	}
	if fallback == nil {
		fallback = history.NewMemoryBackend()
	}

	return history.NewStore(primary, fallback)
}

func buildLLM(cfg config.Config) (llm.Client, error) {
	return gemini.NewClient(gemini.Config{
		APIKey:         cfg.GeminiAPIKey,
		AnalysisModel:  cfg.AnalysisModel,
		ChatModel:      cfg.ChatModel,
		ImageModel:     cfg.ImageModel,
		ThinkingBudget: cfg.ThinkingBudget,
	})
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) {
	var userRepo users.Repo
	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
	} else {
		userRepo = users.NewMemoryRepo()
	}
	userSvc := users.NewService(userRepo)

	registry := dealauth.NewRegistry()
	// Keep durable profiles in sync with sign-ins. Demo identities never
	// touch the users table.
	unsubscribe := registry.Subscribe(func(e dealauth.Event) {
		if e.Type != dealauth.EventSignedIn || e.Demo {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := userSvc.EnsureProfile(ctx, e.User); err != nil {
			telemetry.Warn("bootstrap.ensure_profile_failed", map[string]any{
				"uid":   e.User.UID,
				"error": err.Error(),
			})
		}
	})

	emailSvc := dealauth.NewEmailService(userRepo, registry)
	googleAuth := dealauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		registry,
	)

	analysisSvc := analyses.NewService(app.LLM, app.History, app.Store)
	chatSvc := chats.NewService(app.LLM, app.History, autosaveDelay)
	generationSvc := generations.NewService(app.LLM, app.History, app.Store)

	app.UsersRepo = userRepo
	app.UsersService = userSvc
	app.Registry = registry
	app.unsubscribe = unsubscribe
	app.AnalysesService = analysisSvc
	app.ChatService = chatSvc
	app.GenerationService = generationSvc
	app.AnalysisHandler = analyses.NewHandler(analysisSvc)
	app.ChatHandler = chats.NewHandler(chatSvc)
	app.GenerationHandler = generations.NewHandler(generationSvc)
	app.HistoryHandler = history.NewHandler(app.History)
	app.AuthHandler = dealauth.NewHandler(emailSvc)
	app.GoogleAuth = googleAuth
}
