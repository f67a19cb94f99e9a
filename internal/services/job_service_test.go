package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/factdeck-backend/internal/domain/jobs"
	"github.com/yungbote/factdeck-backend/internal/platform/apierr"
	"github.com/yungbote/factdeck-backend/internal/platform/dbctx"
)

func TestJobServiceOwnerScoping(t *testing.T) {
	h := newHarness(t)
	a := h.user(t, "a")
	b := h.user(t, "b")

	job, err := h.jobs.Enqueue(dbctx.Background(context.Background()), a.ID, jobs.JobTypeFactIngest, map[string]any{"k": "v"})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if len(payload) != 1 || payload["k"] != "v" {
		t.Fatalf("payload: got %v", payload)
	}

	got, err := h.jobs.GetByIDForRequestUser(dbctx.Context{Ctx: as(a)}, job.ID)
	if err != nil {
		t.Fatalf("GetByIDForRequestUser: %v", err)
	}
	if got.ID != job.ID {
		t.Fatalf("GetByIDForRequestUser: got %s", got.ID)
	}

	_, err = h.jobs.GetByIDForRequestUser(dbctx.Context{Ctx: as(b)}, job.ID)
	expectCode(t, err, apierr.CodeNotFound, "other owner")
	_, err = h.jobs.GetByIDForRequestUser(dbctx.Context{Ctx: as(a)}, uuid.New())
	expectCode(t, err, apierr.CodeNotFound, "missing job")
	_, err = h.jobs.GetByIDForRequestUser(dbctx.Background(context.Background()), job.ID)
	expectCode(t, err, apierr.CodeUnauthorized, "anonymous")

	if _, err := h.jobs.Enqueue(dbctx.Background(context.Background()), uuid.Nil, jobs.JobTypeFactIngest, nil); err == nil {
		t.Fatalf("Enqueue without owner succeeded")
	}

	queued := counterValue(t, h.metrics.Registry(), "factdeck_jobs_total",
		map[string]string{"job_type": jobs.JobTypeFactIngest, "status": jobs.StatusQueued})
	if queued != 1 {
		t.Fatalf("jobs counter: got %v want 1", queued)
	}
}
