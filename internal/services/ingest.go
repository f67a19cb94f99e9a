package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	types "github.com/yungbote/factdeck-backend/internal/domain"
	"github.com/yungbote/factdeck-backend/internal/domain/jobs"
	"github.com/yungbote/factdeck-backend/internal/ingestion/parsers"
	"github.com/yungbote/factdeck-backend/internal/platform/apierr"
	"github.com/yungbote/factdeck-backend/internal/platform/ctxutil"
	"github.com/yungbote/factdeck-backend/internal/platform/dbctx"
	"github.com/yungbote/factdeck-backend/internal/platform/logger"
)

type UploadRequest struct {
	ContentType string
	Content     []byte
	DeckID      *uuid.UUID
	Delimiter   string
	Headers     []string
}

// IngestPayload is the job payload stored for the worker.
type IngestPayload struct {
	Format    string     `json:"format"`
	Content   string     `json:"content"`
	Delimiter string     `json:"delimiter,omitempty"`
	Headers   []string   `json:"headers,omitempty"`
	DeckID    *uuid.UUID `json:"deck_id,omitempty"`
	UserID    uuid.UUID  `json:"user_id"`
}

type RecordError struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

// IngestResult is also the job checkpoint: Processed counts records handled so far, in parse
// order, and a retried job resumes after it.
type IngestResult struct {
	Records   int           `json:"records"`
	Processed int           `json:"processed"`
	Created   int           `json:"created"`
	Failed    int           `json:"failed"`
	FactIDs   []uuid.UUID   `json:"fact_ids"`
	Errors    []RecordError `json:"errors,omitempty"`
}

type IngestService interface {
	// EnqueueUpload validates the upload for the expected format and queues a fact_ingest job.
	EnqueueUpload(ctx context.Context, format string, req UploadRequest) (*types.JobRun, error)
	// Process runs every record through FactService.Create as the uploading user.
	Process(ctx context.Context, payload IngestPayload) (*IngestResult, error)
	// Resume continues from prior, skipping records it already processed. checkpoint, when set,
	// is called after every record with the running result.
	Resume(ctx context.Context, payload IngestPayload, prior *IngestResult, checkpoint func(*IngestResult)) (*IngestResult, error)
}

type ingestService struct {
	log   *logger.Logger
	jobs  JobService
	decks DeckService
	facts FactService
}

func NewIngestService(log *logger.Logger, jobSvc JobService, decks DeckService, factSvc FactService) IngestService {
	return &ingestService{
		log:   log.With("service", "IngestService"),
		jobs:  jobSvc,
		decks: decks,
		facts: factSvc,
	}
}

func (s *ingestService) EnqueueUpload(ctx context.Context, format string, req UploadRequest) (*types.JobRun, error) {
	userID := ctxutil.UserID(ctx)
	if userID == uuid.Nil {
		return nil, apierr.Unauthorized("not authenticated")
	}
	if got := parsers.FormatForContentType(req.ContentType); got == "" || got != format {
		return nil, apierr.UnsupportedMedia("unsupported content type %q for %s upload", req.ContentType, format)
	}
	dbc := dbctx.Context{Ctx: ctx}
	if format == parsers.FormatTxt && (req.DeckID == nil || *req.DeckID == uuid.Nil) {
		return nil, apierr.Validation("deck_id is required")
	}
	if req.DeckID != nil && *req.DeckID != uuid.Nil {
		if _, err := s.decks.RequirePossession(dbc, userID, *req.DeckID); err != nil {
			return nil, err
		}
	}
	opts := parsers.Options{Delimiter: req.Delimiter, Headers: req.Headers}
	records, err := parsers.ForFormat(format).Parse(bytes.NewReader(req.Content), opts)
	if err != nil {
		return nil, apierr.Validation("invalid %s upload: %v", format, err)
	}

	payload := IngestPayload{
		Format:    format,
		Content:   string(req.Content),
		Delimiter: req.Delimiter,
		Headers:   req.Headers,
		DeckID:    req.DeckID,
		UserID:    userID,
	}
	job, err := s.jobs.Enqueue(dbc, userID, jobs.JobTypeFactIngest, payload)
	if err != nil {
		return nil, err
	}
	s.log.Info("upload accepted", "job_id", job.ID, "format", format, "records", len(records))
	return job, nil
}

func (s *ingestService) Process(ctx context.Context, payload IngestPayload) (*IngestResult, error) {
	return s.Resume(ctx, payload, nil, nil)
}

func (s *ingestService) Resume(ctx context.Context, payload IngestPayload, prior *IngestResult, checkpoint func(*IngestResult)) (*IngestResult, error) {
	if payload.UserID == uuid.Nil {
		return nil, fmt.Errorf("ingest payload missing user_id")
	}
	p := parsers.ForFormat(payload.Format)
	if p == nil {
		return nil, fmt.Errorf("unknown ingest format %q", payload.Format)
	}
	records, err := p.Parse(bytes.NewReader([]byte(payload.Content)), parsers.Options{
		Delimiter: payload.Delimiter,
		Headers:   payload.Headers,
	})
	if err != nil {
		return nil, fmt.Errorf("parse %s upload: %w", payload.Format, err)
	}

	result := &IngestResult{FactIDs: []uuid.UUID{}}
	if prior != nil && prior.Processed > 0 {
		*result = *prior
		if result.FactIDs == nil {
			result.FactIDs = []uuid.UUID{}
		}
		if result.Processed > len(records) {
			result.Processed = len(records)
		}
		s.log.Info("resuming upload", "processed", result.Processed, "records", len(records))
	}
	result.Records = len(records)

	userCtx := ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: payload.UserID})
	for _, rec := range records[result.Processed:] {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if in, err := recordToCreate(rec, payload.DeckID); err != nil {
			result.fail(rec, err)
		} else if view, err := s.facts.Create(userCtx, in); err != nil {
			result.fail(rec, err)
		} else {
			result.Created++
			result.FactIDs = append(result.FactIDs, view.ID)
		}
		result.Processed++
		if checkpoint != nil {
			checkpoint(result)
		}
	}
	return result, nil
}

func (r *IngestResult) fail(rec parsers.Record, err error) {
	r.Failed++
	r.Errors = append(r.Errors, RecordError{Line: rec.Line, Error: err.Error()})
}

func recordToCreate(rec parsers.Record, defaultDeck *uuid.UUID) (FactCreate, error) {
	in := FactCreate{
		Text:        rec.Text,
		Answer:      rec.Answer,
		AnswerLines: rec.AnswerLines,
		Category:    rec.Category,
		Identifier:  rec.Identifier,
		Extra:       rec.Extra,
	}
	switch {
	case rec.DeckID != "":
		id, err := uuid.Parse(rec.DeckID)
		if err != nil {
			return in, fmt.Errorf("invalid deck_id %q", rec.DeckID)
		}
		in.DeckID = id
	case defaultDeck != nil:
		in.DeckID = *defaultDeck
	}
	return in, nil
}

// DecodeIngestPayload reads a job payload written by EnqueueUpload.
func DecodeIngestPayload(raw []byte) (IngestPayload, error) {
	var p IngestPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("decode ingest payload: %w", err)
	}
	return p, nil
}
