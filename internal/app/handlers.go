package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/factdeck-backend/internal/http"
	httpH "github.com/yungbote/factdeck-backend/internal/http/handlers"
	httpMW "github.com/yungbote/factdeck-backend/internal/http/middleware"
	"github.com/yungbote/factdeck-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health *httpH.HealthHandler
	Fact   *httpH.FactHandler
	Deck   *httpH.DeckHandler
	Job    *httpH.JobHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(db),
		Fact:   httpH.NewFactHandler(services.Facts, services.Ingest),
		Deck:   httpH.NewDeckHandler(services.Decks),
		Job:    httpH.NewJobHandler(services.Jobs),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func routerConfig(log *logger.Logger, cfg Config, clients Clients, handlers Handlers, middleware Middleware) http.RouterConfig {
	rc := http.RouterConfig{
		Log:            log,
		Metrics:        clients.Metrics,
		AllowedOrigins: cfg.AllowedOrigins,
		AuthMiddleware: middleware.Auth,
		FactHandler:    handlers.Fact,
		DeckHandler:    handlers.Deck,
		JobHandler:     handlers.Job,
		HealthHandler:  handlers.Health,
	}
	if cfg.Otel.Enabled {
		rc.ServiceName = cfg.Otel.ServiceName
	}
	return rc
}
