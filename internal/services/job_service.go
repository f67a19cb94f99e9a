package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/factdeck-backend/internal/data/repos"
	types "github.com/yungbote/factdeck-backend/internal/domain"
	"github.com/yungbote/factdeck-backend/internal/domain/jobs"
	"github.com/yungbote/factdeck-backend/internal/observability"
	"github.com/yungbote/factdeck-backend/internal/platform/apierr"
	"github.com/yungbote/factdeck-backend/internal/platform/ctxutil"
	"github.com/yungbote/factdeck-backend/internal/platform/dbctx"
	"github.com/yungbote/factdeck-backend/internal/platform/logger"
)

type JobService interface {
	Enqueue(dbc dbctx.Context, ownerUserID uuid.UUID, jobType string, payload any) (*types.JobRun, error)
	GetByIDForRequestUser(dbc dbctx.Context, jobID uuid.UUID) (*types.JobRun, error)
}

type jobService struct {
	log     *logger.Logger
	repo    repos.JobRunRepo
	metrics *observability.Metrics
}

func NewJobService(baseLog *logger.Logger, repo repos.JobRunRepo, metrics *observability.Metrics) JobService {
	return &jobService{
		log:     baseLog.With("service", "JobService"),
		repo:    repo,
		metrics: metrics,
	}
}

func (s *jobService) Enqueue(dbc dbctx.Context, ownerUserID uuid.UUID, jobType string, payload any) (*types.JobRun, error) {
	if ownerUserID == uuid.Nil {
		return nil, fmt.Errorf("missing owner_user_id")
	}
	if jobType == "" {
		return nil, fmt.Errorf("missing job_type")
	}
	payloadJSON, err := encodePayload(dbc.Ctx, payload)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	job := &types.JobRun{
		ID:          uuid.New(),
		OwnerUserID: ownerUserID,
		JobType:     jobType,
		Status:      jobs.StatusQueued,
		Stage:       "queued",
		Payload:     payloadJSON,
		Result:      datatypes.JSON([]byte(`{}`)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.repo.Create(dbc, []*types.JobRun{job}); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	s.metrics.IncJob(jobType, jobs.StatusQueued)
	s.log.Info("job enqueued", "job_id", job.ID, "job_type", jobType, "user_id", ownerUserID)
	return job, nil
}

// GetByIDForRequestUser hides jobs owned by other users behind NotFound.
func (s *jobService) GetByIDForRequestUser(dbc dbctx.Context, jobID uuid.UUID) (*types.JobRun, error) {
	userID := ctxutil.UserID(dbc.Ctx)
	if userID == uuid.Nil {
		return nil, apierr.Unauthorized("not authenticated")
	}
	job, err := s.repo.GetByID(dbc, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	if job == nil || job.OwnerUserID != userID {
		return nil, apierr.NotFound("job %s not found", jobID)
	}
	return job, nil
}

// encodePayload stores payload as a JSON object carrying the request's trace ids.
func encodePayload(ctx context.Context, payload any) (datatypes.JSON, error) {
	m := map[string]any{}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("job payload must be a JSON object: %w", err)
		}
	}
	ctxutil.GetTraceData(ctx).Stamp(m)
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return datatypes.JSON(b), nil
}
