package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/factdeck-backend/internal/http/handlers"
	httpMW "github.com/yungbote/factdeck-backend/internal/http/middleware"
	"github.com/yungbote/factdeck-backend/internal/observability"
	"github.com/yungbote/factdeck-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	AllowedOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	FactHandler   *httpH.FactHandler
	DeckHandler   *httpH.DeckHandler
	JobHandler    *httpH.JobHandler
	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		// Facts
		if cfg.FactHandler != nil {
			api.GET("/facts", cfg.FactHandler.Browse)
			api.POST("/facts", cfg.FactHandler.Create)
			api.GET("/facts/:id", cfg.FactHandler.Get)
			api.PUT("/facts/:id", cfg.FactHandler.Update)
			api.DELETE("/facts/:id", cfg.FactHandler.Delete)
			api.PUT("/facts/suspend/:id", cfg.FactHandler.Suspend)
			api.PUT("/facts/report/:id", cfg.FactHandler.Report)
			api.PUT("/facts/mark/:id", cfg.FactHandler.Mark)
			api.PUT("/facts/status/:id", cfg.FactHandler.ClearStatus)
			api.POST("/facts/upload/txt", cfg.FactHandler.UploadTxt)
			api.POST("/facts/upload/json", cfg.FactHandler.UploadJSON)
		}

		// Decks
		if cfg.DeckHandler != nil {
			api.POST("/decks", cfg.DeckHandler.Create)
			api.GET("/decks", cfg.DeckHandler.ListMine)
			api.POST("/decks/:id/users", cfg.DeckHandler.AddPossessor)
		}

		// Job
		if cfg.JobHandler != nil {
			api.GET("/jobs/:id", cfg.JobHandler.Get)
		}
	}

	return r
}
