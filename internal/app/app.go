package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/factdeck-backend/internal/data/db"
	"github.com/yungbote/factdeck-backend/internal/http"
	"github.com/yungbote/factdeck-backend/internal/observability"
	"github.com/yungbote/factdeck-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services
	Server   *http.Server

	pg           *db.PostgresService
	otelShutdown func(context.Context) error
}

func NewLogger(cfg Config) (*logger.Logger, error) {
	log, err := logger.NewWithOptions(cfg.LogMode, logger.Options{Level: cfg.LogLevel})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// OpenDB connects to postgres and brings the schema up to date.
func OpenDB(log *logger.Logger, cfg Config) (*db.PostgresService, error) {
	pg, err := db.NewPostgresService(log, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		_ = pg.Close()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	return pg, nil
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	pg, err := OpenDB(log, cfg)
	if err != nil {
		return nil, err
	}
	a, err := NewWithDB(log, cfg, pg.DB())
	if err != nil {
		_ = pg.Close()
		return nil, err
	}
	a.pg = pg
	a.otelShutdown = observability.InitOTel(ctx, log, cfg.Otel)
	return a, nil
}

// NewWithDB wires everything on top of an already migrated database.
func NewWithDB(log *logger.Logger, cfg Config, theDB *gorm.DB) (*App, error) {
	clients, err := wireClients(log, cfg)
	if err != nil {
		return nil, err
	}
	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(theDB, log, cfg, reposet, clients)
	if err != nil {
		clients.Close()
		return nil, err
	}
	handlerset := wireHandlers(log, theDB, serviceset)
	middleware := wireMiddleware(log, serviceset)

	return &App{
		Log:      log,
		DB:       theDB,
		Cfg:      cfg,
		Repos:    reposet,
		Clients:  clients,
		Services: serviceset,
		Server:   http.NewServer(routerConfig(log, cfg, clients, handlerset, middleware)),
	}, nil
}

// Run serves HTTP and, when enabled, the job worker until ctx is cancelled or either fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Server.Run(gctx, ":"+a.Cfg.Port)
	})
	if a.Cfg.Worker.Enabled && a.Services.JobWorker != nil {
		g.Go(func() error {
			return a.Services.JobWorker.Run(gctx)
		})
	}
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	a.Clients.Close()
	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			a.Log.Warn("postgres close failed", "error", err)
		}
	}
	a.Log.Sync()
}
