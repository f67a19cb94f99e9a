package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	redisclient "github.com/yungbote/factdeck-backend/internal/clients/redis"
	"github.com/yungbote/factdeck-backend/internal/data/repos"
	types "github.com/yungbote/factdeck-backend/internal/domain"
	"github.com/yungbote/factdeck-backend/internal/observability"
	"github.com/yungbote/factdeck-backend/internal/platform/dbctx"
	"github.com/yungbote/factdeck-backend/internal/platform/logger"
)

const alertKindAuditWriteFailed = "audit_write_failed"

type AuditEvent struct {
	UserID  uuid.UUID
	FactID  *uuid.UUID
	LogType string
	Details any
}

// AuditSink records history entries. Record never fails the caller; write failures go to
// operators instead.
type AuditSink interface {
	Record(ctx context.Context, ev AuditEvent)
}

type historyAuditSink struct {
	log     *logger.Logger
	repo    repos.HistoryEntryRepo
	metrics *observability.Metrics
	alerts  redisclient.AlertBus
}

// NewHistoryAuditSink writes to the history table. metrics and alerts may be nil.
func NewHistoryAuditSink(log *logger.Logger, repo repos.HistoryEntryRepo, metrics *observability.Metrics, alerts redisclient.AlertBus) AuditSink {
	return &historyAuditSink{
		log:     log.With("service", "AuditSink"),
		repo:    repo,
		metrics: metrics,
		alerts:  alerts,
	}
}

func (s *historyAuditSink) Record(ctx context.Context, ev AuditEvent) {
	// The primary action already happened; a cancelled request must not drop its entry.
	ctx = context.WithoutCancel(ctx)

	details, err := marshalDetails(ev.Details)
	if err != nil {
		s.fail(ctx, ev, err)
		return
	}
	entry := &types.HistoryEntry{
		Time:    time.Now().UTC(),
		UserID:  ev.UserID,
		FactID:  ev.FactID,
		LogType: ev.LogType,
		Details: details,
	}
	if err := s.repo.Create(dbctx.Context{Ctx: ctx}, entry); err != nil {
		s.fail(ctx, ev, err)
	}
}

func (s *historyAuditSink) fail(ctx context.Context, ev AuditEvent, err error) {
	fields := map[string]any{
		"log_type": ev.LogType,
		"user_id":  ev.UserID.String(),
	}
	if ev.FactID != nil {
		fields["fact_id"] = ev.FactID.String()
	}
	s.log.Error("history entry write failed", "log_type", ev.LogType, "user_id", ev.UserID, "fact_id", ev.FactID, "error", err)
	s.metrics.IncAuditFailure()
	if s.alerts == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if perr := s.alerts.Publish(pubCtx, redisclient.Alert{
		Kind:    alertKindAuditWriteFailed,
		Message: err.Error(),
		Fields:  fields,
		Time:    time.Now().UTC(),
	}); perr != nil {
		s.log.Warn("alert publish failed", "error", perr)
	}
}

func marshalDetails(v any) (datatypes.JSON, error) {
	if v == nil {
		return datatypes.JSON(`{}`), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
