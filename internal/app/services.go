package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/factdeck-backend/internal/jobs/pipeline/fact_ingest"
	jobrt "github.com/yungbote/factdeck-backend/internal/jobs/runtime"
	"github.com/yungbote/factdeck-backend/internal/jobs/worker"
	"github.com/yungbote/factdeck-backend/internal/platform/logger"
	"github.com/yungbote/factdeck-backend/internal/services"
)

type Services struct {
	Auth       services.AuthService
	Decks      services.DeckService
	Permission services.PermissionResolver
	Moderation services.ModerationEngine
	Audit      services.AuditSink
	Facts      services.FactService
	Jobs       services.JobService
	Ingest     services.IngestService

	JobRegistry *jobrt.Registry
	JobWorker   *worker.Worker
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")
	var out Services

	out.Auth = services.NewAuthService(log, repos.User, cfg.JWTSecretKey, cfg.AccessTokenTTL)
	out.Decks = services.NewDeckService(db, log, repos.Deck, repos.User)
	out.Permission = services.NewPermissionResolver(log, repos.Deck)
	out.Moderation = services.NewModerationEngine(log, repos.Fact, repos.Toggle)
	out.Audit = services.NewHistoryAuditSink(log, repos.History, clients.Metrics, clients.Alerts)
	out.Facts = services.NewFactService(
		log,
		repos.Fact,
		repos.Toggle,
		repos.User,
		out.Decks,
		out.Permission,
		out.Moderation,
		out.Audit,
		clients.Metrics,
	)
	out.Jobs = services.NewJobService(log, repos.JobRun, clients.Metrics)
	out.Ingest = services.NewIngestService(log, out.Jobs, out.Decks, out.Facts)

	out.JobRegistry = jobrt.NewRegistry()
	if err := out.JobRegistry.Register(fact_ingest.New(log, out.Ingest)); err != nil {
		return Services{}, fmt.Errorf("register fact_ingest pipeline: %w", err)
	}
	wcfg := worker.DefaultConfig()
	wcfg.Concurrency = cfg.Worker.Concurrency
	wcfg.PollInterval = cfg.Worker.PollInterval
	wcfg.MaxAttempts = cfg.Worker.MaxAttempts
	out.JobWorker = worker.NewWorker(log, repos.JobRun, out.JobRegistry, clients.Metrics, wcfg)
	return out, nil
}
