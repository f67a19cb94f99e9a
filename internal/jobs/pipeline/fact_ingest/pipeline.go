package fact_ingest

import (
	"encoding/json"
	"fmt"

	jobrt "github.com/yungbote/factdeck-backend/internal/jobs/runtime"
	"github.com/yungbote/factdeck-backend/internal/services"
)

func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	payload, err := services.DecodeIngestPayload(jc.RawPayload())
	if err != nil {
		jc.Fail("decode", err)
		return nil
	}
	if payload.UserID != jc.Job.OwnerUserID {
		jc.Fail("decode", fmt.Errorf("payload user %s does not own job", payload.UserID))
		return nil
	}

	prior := priorResult(jc)
	if prior != nil {
		p.log.Info("resuming upload", "job_id", jc.Job.ID, "attempt", jc.Job.Attempts, "processed", prior.Processed)
	}
	jc.Progress("ingest", 5)
	res, err := p.ingest.Resume(jc.Ctx, payload, prior, func(r *services.IngestResult) {
		jc.Checkpoint("ingest", ingestPercent(r), r)
	})
	if err != nil {
		jc.Fail("ingest", err)
		return nil
	}
	p.log.Info("upload ingested",
		"job_id", jc.Job.ID,
		"records", res.Records,
		"created", res.Created,
		"failed", res.Failed,
	)
	jc.Succeed("done", res)
	return nil
}

// priorResult reads the checkpoint a previous attempt left on the run, if any.
func priorResult(jc *jobrt.Context) *services.IngestResult {
	if len(jc.Job.Result) == 0 {
		return nil
	}
	var r services.IngestResult
	if err := json.Unmarshal(jc.Job.Result, &r); err != nil || r.Processed == 0 {
		return nil
	}
	return &r
}

func ingestPercent(r *services.IngestResult) int {
	if r.Records == 0 {
		return 95
	}
	return 5 + 90*r.Processed/r.Records
}
