package fact_ingest

import (
	"github.com/yungbote/factdeck-backend/internal/domain/jobs"
	"github.com/yungbote/factdeck-backend/internal/platform/logger"
	"github.com/yungbote/factdeck-backend/internal/services"
)

type Pipeline struct {
	log    *logger.Logger
	ingest services.IngestService
}

func New(baseLog *logger.Logger, ingest services.IngestService) *Pipeline {
	return &Pipeline{
		log:    baseLog.With("job", jobs.JobTypeFactIngest),
		ingest: ingest,
	}
}

func (p *Pipeline) Type() string { return jobs.JobTypeFactIngest }
