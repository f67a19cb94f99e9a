package app

import (
	"fmt"

	"github.com/yungbote/factdeck-backend/internal/clients/redis"
	"github.com/yungbote/factdeck-backend/internal/observability"
	"github.com/yungbote/factdeck-backend/internal/platform/logger"
)

type Clients struct {
	Metrics *observability.Metrics
	// Alerts is nil when REDIS_ADDR is unset; audit failures are then only logged and counted.
	Alerts redis.AlertBus
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	out := Clients{Metrics: observability.NewMetrics()}
	if cfg.Redis.Addr != "" {
		bus, err := redis.NewAlertBus(log, cfg.Redis.Addr, cfg.Redis.AlertChannel)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis alert bus: %w", err)
		}
		out.Alerts = bus
	}
	return out, nil
}

func (c Clients) Close() {
	if c.Alerts != nil {
		_ = c.Alerts.Close()
	}
}
