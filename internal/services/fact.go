package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/factdeck-backend/internal/data/repos"
	types "github.com/yungbote/factdeck-backend/internal/domain"
	"github.com/yungbote/factdeck-backend/internal/domain/facts"
	"github.com/yungbote/factdeck-backend/internal/domain/history"
	"github.com/yungbote/factdeck-backend/internal/observability"
	"github.com/yungbote/factdeck-backend/internal/platform/apierr"
	"github.com/yungbote/factdeck-backend/internal/platform/ctxutil"
	"github.com/yungbote/factdeck-backend/internal/platform/dbctx"
	"github.com/yungbote/factdeck-backend/internal/platform/logger"
)

type FactCreate struct {
	Text        string         `json:"text"`
	Answer      string         `json:"answer"`
	DeckID      uuid.UUID      `json:"deck_id"`
	AnswerLines []string       `json:"answer_lines,omitempty"`
	Category    string         `json:"category,omitempty"`
	Identifier  string         `json:"identifier,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// FactUpdate changes only the fields that are set.
type FactUpdate struct {
	Text        *string        `json:"text,omitempty"`
	Answer      *string        `json:"answer,omitempty"`
	DeckID      *uuid.UUID     `json:"deck_id,omitempty"`
	AnswerLines []string       `json:"answer_lines,omitempty"`
	Category    *string        `json:"category,omitempty"`
	Identifier  *string        `json:"identifier,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

type BrowseResult struct {
	Facts  []*FactView  `json:"facts"`
	Total  int64        `json:"total"`
	Search facts.Search `json:"search"`
}

type FactService interface {
	Browse(ctx context.Context, search facts.Search, withPermissions bool) (*BrowseResult, error)
	Get(ctx context.Context, factID uuid.UUID) (*FactView, error)
	Create(ctx context.Context, in FactCreate) (*FactView, error)
	Update(ctx context.Context, factID uuid.UUID, in FactUpdate) (*FactView, error)
	// Delete soft-deletes a live fact and restores an already deleted one.
	Delete(ctx context.Context, factID uuid.UUID) (*FactView, error)
	Suspend(ctx context.Context, factID uuid.UUID) (*FactView, error)
	Report(ctx context.Context, factID uuid.UUID, rationale string) (*FactView, error)
	Mark(ctx context.Context, factID uuid.UUID) (*FactView, error)
	ClearStatus(ctx context.Context, factID uuid.UUID) (*FactView, error)
}

type factService struct {
	log        *logger.Logger
	facts      repos.FactRepo
	toggles    repos.ToggleRepo
	users      repos.UserRepo
	decks      DeckService
	perms      PermissionResolver
	moderation ModerationEngine
	audit      AuditSink
	metrics    *observability.Metrics
}

func NewFactService(
	log *logger.Logger,
	factRepo repos.FactRepo,
	toggleRepo repos.ToggleRepo,
	userRepo repos.UserRepo,
	decks DeckService,
	perms PermissionResolver,
	moderation ModerationEngine,
	audit AuditSink,
	metrics *observability.Metrics,
) FactService {
	return &factService{
		log:        log.With("service", "FactService"),
		facts:      factRepo,
		toggles:    toggleRepo,
		users:      userRepo,
		decks:      decks,
		perms:      perms,
		moderation: moderation,
		audit:      audit,
		metrics:    metrics,
	}
}

func (s *factService) Browse(ctx context.Context, search facts.Search, withPermissions bool) (*BrowseResult, error) {
	if search.Skip < 0 {
		return nil, apierr.Validation("skip must not be negative")
	}
	if search.Limit < 0 {
		return nil, apierr.Validation("limit must not be negative")
	}
	search = search.Normalize()
	userID := ctxutil.UserID(ctx)
	dbc := dbctx.Context{Ctx: ctx}

	q := repos.BuildFactQuery(search, userID)
	rows, total, err := s.facts.Execute(dbc, q, search.Skip, search.Limit)
	if err != nil {
		return nil, fmt.Errorf("search facts: %w", err)
	}
	views, err := s.annotate(dbc, userID, rows, withPermissions)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, AuditEvent{UserID: userID, LogType: history.LogBrowse, Details: search})
	return &BrowseResult{Facts: views, Total: total, Search: search}, nil
}

func (s *factService) Get(ctx context.Context, factID uuid.UUID) (*FactView, error) {
	userID := ctxutil.UserID(ctx)
	dbc := dbctx.Context{Ctx: ctx}
	fact, err := s.loadAccessible(dbc, userID, factID)
	if err != nil {
		return nil, err
	}
	return s.view(dbc, userID, fact)
}

func (s *factService) Create(ctx context.Context, in FactCreate) (*FactView, error) {
	userID := ctxutil.UserID(ctx)
	if userID == uuid.Nil {
		return nil, apierr.Unauthorized("not authenticated")
	}
	row, err := in.toFact(userID)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := s.decks.RequirePossession(dbc, userID, in.DeckID); err != nil {
		return nil, err
	}
	created, err := s.facts.Create(dbc, []*types.Fact{row})
	if err != nil {
		return nil, fmt.Errorf("create fact: %w", err)
	}
	return s.view(dbc, userID, created[0])
}

func (s *factService) Update(ctx context.Context, factID uuid.UUID, in FactUpdate) (*FactView, error) {
	userID := ctxutil.UserID(ctx)
	dbc := dbctx.Context{Ctx: ctx}
	fact, err := s.loadFact(dbc, factID, false)
	if err != nil {
		return nil, err
	}
	if err := s.requireMutate(dbc, userID, fact); err != nil {
		return nil, err
	}
	updates, err := in.updates()
	if err != nil {
		return nil, err
	}
	if in.DeckID != nil && *in.DeckID != fact.DeckID {
		if _, err := s.decks.RequirePossession(dbc, userID, *in.DeckID); err != nil {
			return nil, err
		}
	}
	before := fact.Snapshot()
	if err := s.facts.UpdateFields(dbc, factID, updates); err != nil {
		return nil, fmt.Errorf("update fact: %w", err)
	}
	updated, err := s.loadFact(dbc, factID, false)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, AuditEvent{
		UserID:  userID,
		FactID:  &updated.ID,
		LogType: history.LogUpdateFact,
		Details: map[string]any{"before": before, "update": in},
	})
	return s.view(dbc, userID, updated)
}

func (s *factService) Delete(ctx context.Context, factID uuid.UUID) (*FactView, error) {
	userID := ctxutil.UserID(ctx)
	dbc := dbctx.Context{Ctx: ctx}
	fact, err := s.loadFact(dbc, factID, true)
	if err != nil {
		return nil, err
	}
	if err := s.requireMutate(dbc, userID, fact); err != nil {
		return nil, err
	}
	states, err := s.moderation.State(dbc, userID, []uuid.UUID{factID})
	if err != nil {
		return nil, fmt.Errorf("load toggle state: %w", err)
	}
	// A marker always takes the undo branch; otherwise a deleted fact is restored.
	undo := facts.NextAction(facts.KindMark, states[factID]) == facts.ActionUndo || fact.DeletedAt.Valid

	logType := history.LogDeleteFact
	switch {
	case undo && fact.DeletedAt.Valid:
		logType = history.LogUndoDeleteFact
		err = s.facts.Restore(dbc, factID)
	case undo:
		logType = history.LogUndoDeleteFact
	default:
		err = s.facts.SoftDelete(dbc, factID)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", logType, err)
	}
	after, err := s.loadFact(dbc, factID, true)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, AuditEvent{
		UserID:  userID,
		FactID:  &after.ID,
		LogType: logType,
		Details: map[string]any{"before": fact.Snapshot(), "after": after.Snapshot()},
	})
	return s.view(dbc, userID, after)
}

func (s *factService) Suspend(ctx context.Context, factID uuid.UUID) (*FactView, error) {
	return s.toggle(ctx, factID, facts.KindSuspend, "")
}

func (s *factService) Report(ctx context.Context, factID uuid.UUID, rationale string) (*FactView, error) {
	return s.toggle(ctx, factID, facts.KindReport, strings.TrimSpace(rationale))
}

func (s *factService) Mark(ctx context.Context, factID uuid.UUID) (*FactView, error) {
	return s.toggle(ctx, factID, facts.KindMark, "")
}

func (s *factService) toggle(ctx context.Context, factID uuid.UUID, kind facts.Kind, rationale string) (*FactView, error) {
	userID := ctxutil.UserID(ctx)
	if userID == uuid.Nil {
		return nil, apierr.Unauthorized("not authenticated")
	}
	dbc := dbctx.Context{Ctx: ctx}
	fact, err := s.loadAccessible(dbc, userID, factID)
	if err != nil {
		return nil, err
	}
	states, err := s.moderation.State(dbc, userID, []uuid.UUID{factID})
	if err != nil {
		return nil, fmt.Errorf("load toggle state: %w", err)
	}
	before := states[factID]

	action := facts.NextAction(kind, before)
	var after facts.ToggleState
	if action == facts.ActionUndo {
		after, err = s.moderation.ClearToggle(dbc, userID, factID, kind)
	} else {
		after, err = s.moderation.SetToggle(dbc, userID, factID, kind, rationale)
	}
	if err != nil {
		return nil, err
	}
	s.metrics.IncToggle(string(kind), string(action))

	details := map[string]any{"before": before, "after": after}
	if kind == facts.KindReport && action == facts.ActionApply && rationale != "" {
		details["rationale"] = rationale
	}
	s.audit.Record(ctx, AuditEvent{
		UserID:  userID,
		FactID:  &fact.ID,
		LogType: action.LogType(kind),
		Details: details,
	})
	return s.view(dbc, userID, fact)
}

func (s *factService) ClearStatus(ctx context.Context, factID uuid.UUID) (*FactView, error) {
	userID := ctxutil.UserID(ctx)
	if userID == uuid.Nil {
		return nil, apierr.Unauthorized("not authenticated")
	}
	dbc := dbctx.Context{Ctx: ctx}
	fact, err := s.loadAccessible(dbc, userID, factID)
	if err != nil {
		return nil, err
	}
	states, err := s.moderation.State(dbc, userID, []uuid.UUID{factID})
	if err != nil {
		return nil, fmt.Errorf("load toggle state: %w", err)
	}
	after, err := s.moderation.ClearStatuses(dbc, userID, factID)
	if err != nil {
		return nil, err
	}
	s.metrics.IncToggle("status", "clear")
	s.audit.Record(ctx, AuditEvent{
		UserID:  userID,
		FactID:  &fact.ID,
		LogType: history.LogClearReportOrSuspend,
		Details: map[string]any{"before": states[factID], "after": after},
	})
	return s.view(dbc, userID, fact)
}

func (s *factService) loadFact(dbc dbctx.Context, factID uuid.UUID, withDeleted bool) (*types.Fact, error) {
	var (
		fact *types.Fact
		err  error
	)
	if withDeleted {
		fact, err = s.facts.GetByIDUnscoped(dbc, factID)
	} else {
		fact, err = s.facts.GetByID(dbc, factID)
	}
	if errors.Is(err, repos.ErrNotFound) {
		return nil, apierr.NotFound("fact %s not found", factID)
	}
	if err != nil {
		return nil, fmt.Errorf("load fact: %w", err)
	}
	return fact, nil
}

func (s *factService) loadAccessible(dbc dbctx.Context, userID, factID uuid.UUID) (*types.Fact, error) {
	fact, err := s.loadFact(dbc, factID, false)
	if err != nil {
		return nil, err
	}
	if !s.perms.CanAccess(dbc, userID, fact) {
		return nil, apierr.Forbidden("no access to fact %s", factID)
	}
	return fact, nil
}

func (s *factService) requireMutate(dbc dbctx.Context, userID uuid.UUID, fact *types.Fact) error {
	if userID == uuid.Nil {
		return apierr.Unauthorized("not authenticated")
	}
	perm := s.perms.Resolve(dbc, userID, fact)
	if !facts.Visibility(perm).CanMutate {
		return apierr.Forbidden("%s permission cannot modify fact %s", perm, fact.ID)
	}
	return nil
}

func (s *factService) view(dbc dbctx.Context, viewer uuid.UUID, fact *types.Fact) (*FactView, error) {
	views, err := s.annotate(dbc, viewer, []*types.Fact{fact}, true)
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// annotate builds the per-viewer projection: role, toggle state, and redacted report details.
func (s *factService) annotate(dbc dbctx.Context, viewer uuid.UUID, rows []*types.Fact, withPermissions bool) ([]*FactView, error) {
	views := make([]*FactView, 0, len(rows))
	if !withPermissions || len(rows) == 0 {
		for _, f := range rows {
			views = append(views, &FactView{Fact: f})
		}
		return views, nil
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, f := range rows {
		ids = append(ids, f.ID)
	}
	perms := s.perms.ResolveMany(dbc, viewer, rows)
	states, err := s.moderation.State(dbc, viewer, ids)
	if err != nil {
		return nil, fmt.Errorf("load toggle states: %w", err)
	}
	reports, err := s.toggles.ReportsFor(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("load reports: %w", err)
	}
	reporterIDs := make([]uuid.UUID, 0, len(reports))
	seen := map[uuid.UUID]bool{}
	for _, r := range reports {
		if !seen[r.UserID] {
			seen[r.UserID] = true
			reporterIDs = append(reporterIDs, r.UserID)
		}
	}
	names, err := s.users.UsernamesByIDs(dbc, reporterIDs)
	if err != nil {
		return nil, fmt.Errorf("load reporter names: %w", err)
	}
	byFact := map[uuid.UUID][]ReportDetail{}
	for _, r := range reports {
		byFact[r.FactID] = append(byFact[r.FactID], ReportDetail{
			ReportID:         r.ID,
			ReporterID:       r.UserID,
			ReporterUsername: names[r.UserID],
			Rationale:        r.Rationale,
			CreatedAt:        r.CreatedAt,
		})
	}

	for _, f := range rows {
		perm := perms[f.ID]
		st := states[f.ID]
		v := &FactView{
			Fact:       f,
			Permission: &perm,
			Marked:     boolRef(st.Marked),
			Suspended:  boolRef(st.Suspended),
			Reported:   boolRef(st.Reported),
			Reports:    byFact[f.ID],
		}
		for _, r := range v.Reports {
			if viewer != uuid.Nil && r.ReporterID == viewer {
				v.Rationale = r.Rationale
			}
		}
		views = append(views, Redact(v, perm, viewer))
	}
	return views, nil
}

func (in FactCreate) toFact(owner uuid.UUID) (*types.Fact, error) {
	text := strings.TrimSpace(in.Text)
	answer := strings.TrimSpace(in.Answer)
	if text == "" {
		return nil, apierr.Validation("text is required")
	}
	if answer == "" {
		return nil, apierr.Validation("answer is required")
	}
	if in.DeckID == uuid.Nil {
		return nil, apierr.Validation("deck_id is required")
	}
	lines := cleanLines(in.AnswerLines)
	if len(lines) == 0 {
		lines = []string{answer}
	}
	f := &types.Fact{
		UserID:      owner,
		DeckID:      in.DeckID,
		Text:        text,
		Answer:      answer,
		AnswerLines: datatypes.JSONSlice[string](lines),
		Category:    strings.TrimSpace(in.Category),
		Identifier:  strings.TrimSpace(in.Identifier),
	}
	if len(in.Extra) > 0 {
		f.Extra = datatypes.JSONMap(in.Extra)
	}
	return f, nil
}

func (in FactUpdate) updates() (map[string]interface{}, error) {
	updates := map[string]interface{}{}
	if in.Text != nil {
		v := strings.TrimSpace(*in.Text)
		if v == "" {
			return nil, apierr.Validation("text must not be empty")
		}
		updates["text"] = v
	}
	if in.Answer != nil {
		v := strings.TrimSpace(*in.Answer)
		if v == "" {
			return nil, apierr.Validation("answer must not be empty")
		}
		updates["answer"] = v
	}
	if in.DeckID != nil {
		if *in.DeckID == uuid.Nil {
			return nil, apierr.Validation("deck_id must not be empty")
		}
		updates["deck_id"] = *in.DeckID
	}
	if in.AnswerLines != nil {
		updates["answer_lines"] = datatypes.JSONSlice[string](cleanLines(in.AnswerLines))
	}
	if in.Category != nil {
		updates["category"] = strings.TrimSpace(*in.Category)
	}
	if in.Identifier != nil {
		updates["identifier"] = strings.TrimSpace(*in.Identifier)
	}
	if in.Extra != nil {
		updates["extra"] = datatypes.JSONMap(in.Extra)
	}
	if len(updates) == 0 {
		return nil, apierr.Validation("no fields to update")
	}
	return updates, nil
}

func cleanLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
