package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/factdeck-backend/internal/data/repos"
	types "github.com/yungbote/factdeck-backend/internal/domain"
	"github.com/yungbote/factdeck-backend/internal/domain/jobs"
	"github.com/yungbote/factdeck-backend/internal/observability"
	"github.com/yungbote/factdeck-backend/internal/platform/ctxutil"
	"github.com/yungbote/factdeck-backend/internal/platform/dbctx"
	"github.com/yungbote/factdeck-backend/internal/platform/logger"
)

/*
Context is the execution handle for one claimed job run.
Handlers never touch job_run directly; they report through Progress, Fail and Succeed.
*/
type Context struct {
	Ctx     context.Context
	Job     *types.JobRun
	Repo    repos.JobRunRepo
	Metrics *observability.Metrics
	Log     *logger.Logger
	payload map[string]any
}

func NewContext(ctx context.Context, job *types.JobRun, repo repos.JobRunRepo, metrics *observability.Metrics, log *logger.Logger) *Context {
	c := &Context{
		Ctx:     ctx,
		Job:     job,
		Repo:    repo,
		Metrics: metrics,
		Log:     log,
	}
	if job != nil && log != nil {
		c.Log = log.With("job_id", job.ID, "job_type", job.JobType)
	}
	_ = c.decodePayload()
	c.applyTraceData()
	return c
}

// decodePayload leaves an empty map on malformed JSON; handlers validate what they need.
func (c *Context) decodePayload() error {
	if c.Job == nil {
		return nil
	}
	if len(c.Job.Payload) == 0 {
		c.payload = map[string]any{}
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(c.Job.Payload, &m); err != nil {
		c.payload = map[string]any{}
		return err
	}
	c.payload = m
	return nil
}

func (c *Context) applyTraceData() {
	if c == nil || c.Ctx == nil {
		return
	}
	payload := c.Payload()
	c.Ctx = ctxutil.WithTraceData(c.Ctx, &ctxutil.TraceData{
		TraceID:   payloadString(payload, "trace_id"),
		RequestID: payloadString(payload, "request_id"),
	})
}

func payloadString(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// Payload never returns nil.
func (c *Context) Payload() map[string]any {
	if c.payload == nil {
		c.payload = map[string]any{}
	}
	return c.payload
}

func (c *Context) PayloadUUID(key string) (uuid.UUID, bool) {
	s := payloadString(c.Payload(), key)
	if s == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// RawPayload returns the stored payload bytes for typed decoding.
func (c *Context) RawPayload() []byte {
	if c.Job == nil {
		return nil
	}
	return c.Job.Payload
}

// Progress records a non-terminal stage and refreshes the heartbeat.
func (c *Context) Progress(stage string, pct int) {
	if c == nil {
		return
	}
	now := time.Now().UTC()
	if c.Repo != nil && c.Job != nil && c.Job.ID != uuid.Nil {
		if err := c.Repo.UpdateFields(dbctx.Context{Ctx: c.ctx()}, c.Job.ID, map[string]interface{}{
			"stage":        stage,
			"progress":     pct,
			"heartbeat_at": now,
			"updated_at":   now,
		}); err != nil && c.Log != nil {
			c.Log.Warn("job progress update failed", "error", err)
		}
	}
	if c.Job != nil {
		c.Job.Stage = stage
		c.Job.Progress = pct
		c.Job.HeartbeatAt = &now
		c.Job.UpdatedAt = now
	}
}

// Checkpoint is Progress plus a partial result. A failed or reclaimed run keeps the result, so
// the next attempt can read it back from Job.Result.
func (c *Context) Checkpoint(stage string, pct int, partial any) {
	if c == nil {
		return
	}
	b, err := json.Marshal(partial)
	if err != nil {
		if c.Log != nil {
			c.Log.Warn("job checkpoint marshal failed", "error", err)
		}
		c.Progress(stage, pct)
		return
	}
	now := time.Now().UTC()
	if c.Repo != nil && c.Job != nil && c.Job.ID != uuid.Nil {
		if err := c.Repo.UpdateFields(dbctx.Context{Ctx: c.ctx()}, c.Job.ID, map[string]interface{}{
			"stage":        stage,
			"progress":     pct,
			"result":       datatypes.JSON(b),
			"heartbeat_at": now,
			"updated_at":   now,
		}); err != nil && c.Log != nil {
			c.Log.Warn("job checkpoint update failed", "error", err)
		}
	}
	if c.Job != nil {
		c.Job.Stage = stage
		c.Job.Progress = pct
		c.Job.Result = datatypes.JSON(b)
		c.Job.HeartbeatAt = &now
		c.Job.UpdatedAt = now
	}
}

// Fail marks the run failed. The worker may retry it later up to its attempt limit.
func (c *Context) Fail(stage string, err error) {
	if c == nil {
		return
	}
	now := time.Now().UTC()
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if c.Repo != nil && c.Job != nil && c.Job.ID != uuid.Nil {
		if uerr := c.Repo.UpdateFields(dbctx.Context{Ctx: c.ctx()}, c.Job.ID, map[string]interface{}{
			"status":        jobs.StatusFailed,
			"stage":         stage,
			"error":         msg,
			"last_error_at": now,
			"locked_at":     nil,
			"updated_at":    now,
		}); uerr != nil && c.Log != nil {
			c.Log.Error("job fail update failed", "error", uerr)
		}
	}
	if c.Job != nil {
		c.Job.Status = jobs.StatusFailed
		c.Job.Stage = stage
		c.Job.Error = msg
		c.Job.LastErrorAt = &now
		c.Job.LockedAt = nil
		c.Job.UpdatedAt = now
		c.Metrics.IncJob(c.Job.JobType, jobs.StatusFailed)
	}
	if c.Log != nil {
		c.Log.Warn("job failed", "stage", stage, "error", msg)
	}
}

// Succeed stores result as JSON and marks the run done.
func (c *Context) Succeed(finalStage string, result any) {
	if c == nil {
		return
	}
	now := time.Now().UTC()
	res := datatypes.JSON([]byte(`{}`))
	if result != nil {
		b, err := json.Marshal(result)
		if err != nil {
			c.Fail("result", fmt.Errorf("marshal result: %w", err))
			return
		}
		res = datatypes.JSON(b)
	}
	if c.Repo != nil && c.Job != nil && c.Job.ID != uuid.Nil {
		if err := c.Repo.UpdateFields(dbctx.Context{Ctx: c.ctx()}, c.Job.ID, map[string]interface{}{
			"status":       jobs.StatusSucceeded,
			"stage":        finalStage,
			"progress":     100,
			"error":        "",
			"result":       res,
			"locked_at":    nil,
			"heartbeat_at": now,
			"updated_at":   now,
		}); err != nil && c.Log != nil {
			c.Log.Error("job succeed update failed", "error", err)
		}
	}
	if c.Job != nil {
		c.Job.Status = jobs.StatusSucceeded
		c.Job.Stage = finalStage
		c.Job.Progress = 100
		c.Job.Error = ""
		c.Job.Result = res
		c.Job.LockedAt = nil
		c.Job.HeartbeatAt = &now
		c.Job.UpdatedAt = now
		c.Metrics.IncJob(c.Job.JobType, jobs.StatusSucceeded)
	}
}

// ctx detaches from cancellation so terminal writes land during shutdown.
func (c *Context) ctx() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return context.WithoutCancel(c.Ctx)
}
