package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/factdeck-backend/internal/domain/facts"
	"github.com/yungbote/factdeck-backend/internal/http/response"
	"github.com/yungbote/factdeck-backend/internal/ingestion/parsers"
	"github.com/yungbote/factdeck-backend/internal/platform/apierr"
	"github.com/yungbote/factdeck-backend/internal/services"
)

const maxUploadBytes = 10 << 20

type FactHandler struct {
	facts  services.FactService
	ingest services.IngestService
}

func NewFactHandler(factSvc services.FactService, ingestSvc services.IngestService) *FactHandler {
	return &FactHandler{facts: factSvc, ingest: ingestSvc}
}

// GET /api/facts
func (h *FactHandler) Browse(c *gin.Context) {
	search, withPermissions, err := parseSearch(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	res, err := h.facts.Browse(c.Request.Context(), search, withPermissions)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/facts
func (h *FactHandler) Create(c *gin.Context) {
	var in services.FactCreate
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondAPIError(c, apierr.Validation("invalid fact body: %v", err))
		return
	}
	view, err := h.facts.Create(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, view)
}

// GET /api/facts/:id
func (h *FactHandler) Get(c *gin.Context) {
	h.withFactID(c, func(id uuid.UUID) (*services.FactView, error) {
		return h.facts.Get(c.Request.Context(), id)
	})
}

// PUT /api/facts/:id
func (h *FactHandler) Update(c *gin.Context) {
	var in services.FactUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondAPIError(c, apierr.Validation("invalid update body: %v", err))
		return
	}
	h.withFactID(c, func(id uuid.UUID) (*services.FactView, error) {
		return h.facts.Update(c.Request.Context(), id, in)
	})
}

// DELETE /api/facts/:id
func (h *FactHandler) Delete(c *gin.Context) {
	h.withFactID(c, func(id uuid.UUID) (*services.FactView, error) {
		return h.facts.Delete(c.Request.Context(), id)
	})
}

// PUT /api/facts/suspend/:id
func (h *FactHandler) Suspend(c *gin.Context) {
	h.withFactID(c, func(id uuid.UUID) (*services.FactView, error) {
		return h.facts.Suspend(c.Request.Context(), id)
	})
}

type reportBody struct {
	Rationale string `json:"rationale"`
}

// PUT /api/facts/report/:id
func (h *FactHandler) Report(c *gin.Context) {
	var body reportBody
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			response.RespondAPIError(c, apierr.Validation("invalid report body: %v", err))
			return
		}
	}
	h.withFactID(c, func(id uuid.UUID) (*services.FactView, error) {
		return h.facts.Report(c.Request.Context(), id, strings.TrimSpace(body.Rationale))
	})
}

// PUT /api/facts/mark/:id
func (h *FactHandler) Mark(c *gin.Context) {
	h.withFactID(c, func(id uuid.UUID) (*services.FactView, error) {
		return h.facts.Mark(c.Request.Context(), id)
	})
}

// PUT /api/facts/status/:id
func (h *FactHandler) ClearStatus(c *gin.Context) {
	h.withFactID(c, func(id uuid.UUID) (*services.FactView, error) {
		return h.facts.ClearStatus(c.Request.Context(), id)
	})
}

// POST /api/facts/upload/txt
func (h *FactHandler) UploadTxt(c *gin.Context) {
	h.upload(c, parsers.FormatTxt)
}

// POST /api/facts/upload/json
func (h *FactHandler) UploadJSON(c *gin.Context) {
	h.upload(c, parsers.FormatJSON)
}

func (h *FactHandler) upload(c *gin.Context, format string) {
	req, err := readUpload(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	job, err := h.ingest.EnqueueUpload(c.Request.Context(), format, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondAccepted(c, gin.H{"ok": true, "job_id": job.ID})
}

func (h *FactHandler) withFactID(c *gin.Context, fn func(id uuid.UUID) (*services.FactView, error)) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	view, err := fn(id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// readUpload accepts a multipart upload_file part, or the raw request body for non-multipart requests.
func readUpload(c *gin.Context) (services.UploadRequest, error) {
	req := services.UploadRequest{Headers: c.QueryArray("headers")}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))
	if mediaType != "multipart/form-data" {
		content, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return req, apierr.Validation("read upload: %v", err)
		}
		req.ContentType = c.GetHeader("Content-Type")
		req.Content = content
		deckID, err := optionalUUID(c.Query("deck_id"), "deck_id")
		if err != nil {
			return req, err
		}
		req.DeckID = deckID
		req.Delimiter = firstNonEmpty(c.Query("delimeter"), c.Query("delimiter"))
		return req, nil
	}

	fh, err := c.FormFile("upload_file")
	if err != nil {
		return req, apierr.Validation("upload_file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return req, apierr.Validation("open upload_file: %v", err)
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return req, apierr.Validation("read upload_file: %v", err)
	}
	req.ContentType = fh.Header.Get("Content-Type")
	req.Content = content

	deckID, err := optionalUUID(firstNonEmpty(c.PostForm("deck_id"), c.Query("deck_id")), "deck_id")
	if err != nil {
		return req, err
	}
	req.DeckID = deckID
	if d, ok := c.GetPostForm("delimeter"); ok {
		req.Delimiter = d
	} else if d, ok := c.GetPostForm("delimiter"); ok {
		req.Delimiter = d
	}
	if len(req.Headers) == 0 {
		req.Headers = c.PostFormArray("headers")
	}
	return req, nil
}

func parseSearch(c *gin.Context) (facts.Search, bool, error) {
	s := facts.Search{
		All:        c.Query("all"),
		Text:       c.Query("text"),
		Answer:     c.Query("answer"),
		Category:   c.Query("category"),
		Identifier: c.Query("identifier"),
		Randomize:  c.Query("randomize") == "true",
	}
	var err error
	if s.Skip, err = optionalInt(c.Query("skip"), "skip"); err != nil {
		return s, false, err
	}
	if s.Limit, err = optionalInt(c.Query("limit"), "limit"); err != nil {
		return s, false, err
	}
	if s.DeckID, err = optionalUUID(c.Query("deck_id"), "deck_id"); err != nil {
		return s, false, err
	}
	for _, raw := range c.QueryArray("deck_ids") {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := uuid.Parse(part)
			if err != nil {
				return s, false, apierr.Validation("invalid deck_ids entry %q", part)
			}
			s.DeckIDs = append(s.DeckIDs, id)
		}
	}
	if s.Marked, err = optionalBool(c.Query("marked"), "marked"); err != nil {
		return s, false, err
	}
	if s.Suspended, err = optionalBool(c.Query("suspended"), "suspended"); err != nil {
		return s, false, err
	}
	if s.Reported, err = optionalBool(c.Query("reported"), "reported"); err != nil {
		return s, false, err
	}
	withPermissions := true
	if p, err := optionalBool(c.Query("permissions"), "permissions"); err != nil {
		return s, false, err
	} else if p != nil {
		withPermissions = *p
	}
	return s, withPermissions, nil
}

func optionalInt(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierr.Validation("invalid %s %q", name, raw)
	}
	return n, nil
}

func optionalBool(raw, name string) (*bool, error) {
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apierr.Validation("invalid %s %q", name, raw)
	}
	return &b, nil
}

func optionalUUID(raw, name string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apierr.Validation("invalid %s %q", name, raw)
	}
	return &id, nil
}

// pathUUID parses a uuid path parameter, answering Validation for malformed ids.
func pathUUID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apierr.Validation("invalid %s %q", name, c.Param(name))
	}
	return id, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
