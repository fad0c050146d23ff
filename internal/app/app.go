package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lexivid/annotator-backend/internal/clients/lemmatizer"
	"github.com/lexivid/annotator-backend/internal/clients/neo4jdb"
	"github.com/lexivid/annotator-backend/internal/clients/rediscache"
	"github.com/lexivid/annotator-backend/internal/db"
	"github.com/lexivid/annotator-backend/internal/document"
	"github.com/lexivid/annotator-backend/internal/handlers"
	"github.com/lexivid/annotator-backend/internal/logger"
	"github.com/lexivid/annotator-backend/internal/observability"
	"github.com/lexivid/annotator-backend/internal/repos"
	"github.com/lexivid/annotator-backend/internal/server"
)

type App struct {
	Log    *logger.Logger
	DB     *gorm.DB
	Router *gin.Engine
	Cfg    Config

	httpServer   *http.Server
	neo          *neo4jdb.Client
	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Mode,
		Version:     cfg.Version,
	})

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	log.Info("Wiring repos...")
	graphRepo := repos.NewAnnotationGraphRepo(theDB, log)
	sortPrefRepo := repos.NewSortPreferenceRepo(theDB, log)

	log.Info("Wiring clients...")
	lem, err := lemmatizer.NewClient(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init lemmatizer client: %w", err)
	}
	if os.Getenv("REDIS_ADDR") != "" {
		cached, err := rediscache.NewClient(log, lem)
		if err != nil {
			log.Warn("redis cache init failed, running uncached", "error", err)
		} else {
			lem = cached
		}
	}

	neo, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Warn("neo4j init failed, projection disabled", "error", err)
		neo = nil
	}

	saver := &snapshotSaver{log: log, graphRepo: graphRepo, neo: neo}
	store := &snapshotStore{graphRepo: graphRepo}
	manager := document.NewManager(lem, saver, store, log)

	annotatorHandler := handlers.NewAnnotatorHandler(log, manager, lem, graphRepo, sortPrefRepo, cfg.ExportBaseURL)

	router := server.NewRouter(server.RouterConfig{
		AnnotatorHandler: annotatorHandler,
		ServiceName:      cfg.ServiceName,
		AllowOrigins:     cfg.AllowOrigins,
	})

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		neo:          neo,
		otelShutdown: otelShutdown,
	}, nil
}

func (a *App) Run(addr string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	a.httpServer = &http.Server{
		Addr:              addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.Log.Info("HTTP server listening", "addr", addr)
	if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and closes external connections.
func (a *App) Shutdown(ctx context.Context) {
	if a == nil {
		return
	}
	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.Log.Warn("http shutdown", "error", err)
		}
	}
	if a.neo != nil {
		if err := a.neo.Close(ctx); err != nil {
			a.Log.Warn("neo4j close", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
