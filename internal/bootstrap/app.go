package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"summary-backend/internal/documents"
	"summary-backend/internal/llm"
	"summary-backend/internal/llm/openai"
	"summary-backend/internal/shared/config"
	"summary-backend/internal/shared/resilience"
	"summary-backend/internal/shared/server"
	"summary-backend/internal/shared/storage/db"
	"summary-backend/internal/shared/storage/object"
	localstore "summary-backend/internal/shared/storage/object/local"
	s3store "summary-backend/internal/shared/storage/object/s3"
	"summary-backend/internal/shared/telemetry"
	"summary-backend/internal/summaries"
)

// App holds shared dependencies.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Store            object.ObjectStore
	LLM              llm.Client
	DocumentsRepo    documents.Repo
	DocumentsService *documents.Service
	SummaryService   *summaries.Service
	DocumentsHandler *documents.Handler
	SummaryHandler   *summaries.Handler
}

// Build wires storage, services and the router from cfg.
func Build(cfg config.Config) (*App, error) {
	return BuildContext(context.Background(), cfg)
}

// BuildContext is Build with a caller-supplied context for connection setup.
func BuildContext(ctx context.Context, cfg config.Config) (*App, error) {
	return build(ctx, cfg, false)
}

// BuildWithDatabase is BuildContext without the in-memory fallback. A missing or
// unreachable database is an error in every environment.
func BuildWithDatabase(ctx context.Context, cfg config.Config) (*App, error) {
	return build(ctx, cfg, true)
}

func build(ctx context.Context, cfg config.Config, requireDB bool) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}

	sqlDB, err := buildDB(ctx, cfg, !requireDB && isDevLike(cfg.Env))
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	llmClient, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		LLM:    llmClient,
	}
	buildServices(app)

	deps := server.RouterDeps{
		Config:   cfg,
		Handlers: []server.RouteRegistrar{app.DocumentsHandler, app.SummaryHandler},
		Health:   app.health,
	}
	if local, ok := store.(*localstore.Store); ok {
		deps.BlobDir = local.Dir()
	}
	app.Router = server.NewRouter(deps)

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config, memoryFallback bool) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if memoryFallback {
			telemetry.Warn("bootstrap.memory_repo", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, db.ErrNoDatabaseURL
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		sqlDB, err = db.Shared(ctx, cfg.DatabaseURL, db.RuntimeOptions())
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.RuntimeOptions())
	}
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
	}
	if err != nil {
		if sqlDB != nil && !db.IsLambdaRuntime() {
			_ = sqlDB.Close()
		}
		if memoryFallback {
			telemetry.Warn("bootstrap.memory_repo", map[string]any{"reason": "database unavailable", "err": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, s3store.Options{
			Region:        cfg.AWSRegion,
			Bucket:        cfg.S3Bucket,
			Prefix:        cfg.S3Prefix,
			Endpoint:      cfg.S3Endpoint,
			PublicBaseURL: cfg.S3PublicBaseURL,
			KMSKeyID:      cfg.SSEKMSKeyID,
		})
	default:
		return localstore.New(cfg.LocalStoreDir, cfg.BlobBaseURL()), nil
	}
}

func buildLLM(cfg config.Config) (llm.Client, error) {
	if cfg.LLMProvider != "openai" {
		return llm.PlaceholderClient{}, nil
	}
	if strings.TrimSpace(cfg.LLMAPIKey) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.llm_placeholder", map[string]any{"reason": "LLM_API_KEY empty"})
			return llm.PlaceholderClient{}, nil
		}
		return nil, fmt.Errorf("LLM_PROVIDER=openai requires LLM_API_KEY")
	}
	return openai.NewClient(openai.Options{
		APIKey:     cfg.LLMAPIKey,
		BaseURL:    cfg.LLMBaseURL,
		Model:      cfg.LLMModel,
		Timeout:    cfg.LLMTimeout,
		Resilience: resilience.DefaultConfig(),
	})
}

func buildServices(app *App) {
	var repo documents.Repo
	if app.DB != nil {
		repo = &documents.PGRepo{DB: app.DB}
	} else {
		repo = documents.NewMemoryRepo()
	}

	docSvc := &documents.Service{Store: app.Store, Repo: repo}
	temperature := app.Config.SummaryTemperature
	summarySvc := &summaries.Service{
		LLM:         app.LLM,
		Writer:      docSvc,
		Timeout:     app.Config.SummaryTimeout,
		MaxTokens:   app.Config.SummaryMaxTokens,
		Temperature: &temperature,
	}

	app.DocumentsRepo = repo
	app.DocumentsService = docSvc
	app.SummaryService = summarySvc
	app.DocumentsHandler = documents.NewHandler(docSvc, app.Config.MaxUploadBytes)
	app.SummaryHandler = summaries.NewHandler(summarySvc)
}

func (a *App) health(ctx context.Context) (gin.H, error) {
	status := gin.H{
		"objectStore": a.Config.ObjectStoreType,
		"database":    "memory",
	}
	if a.DB == nil {
		return status, nil
	}
	status["database"] = "postgres"
	return status, db.Ping(ctx, a.DB, 2*time.Second)
}

// Close releases the database pool.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}
