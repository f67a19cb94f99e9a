package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	types "github.com/yungbote/factdeck-backend/internal/domain"
	"github.com/yungbote/factdeck-backend/internal/domain/facts"
	"github.com/yungbote/factdeck-backend/internal/platform/apierr"
	"github.com/yungbote/factdeck-backend/internal/platform/dbctx"
)

var allKinds = []facts.Kind{facts.KindMark, facts.KindSuspend, facts.KindReport}

func TestSetToggleIsIdempotent(t *testing.T) {
	h := newHarness(t)
	dbc := dbctx.Background(context.Background())
	u := h.user(t, "u")
	f := h.fact(t, u, h.deck(t, u, "d", false), "q", "a")

	for _, kind := range allKinds {
		if _, err := h.moderation.SetToggle(dbc, u.ID, f.ID, kind, ""); err != nil {
			t.Fatalf("SetToggle %s: %v", kind, err)
		}
		st, err := h.moderation.SetToggle(dbc, u.ID, f.ID, kind, "")
		if err != nil || !st.Active(kind) {
			t.Fatalf("SetToggle %s again: state=%+v err=%v", kind, st, err)
		}
		n, err := h.toggles.Count(dbc, u.ID, f.ID, kind)
		if err != nil || n != 1 {
			t.Fatalf("Count %s: n=%d err=%v", kind, n, err)
		}
	}
}

func TestSetClearIsActive(t *testing.T) {
	h := newHarness(t)
	dbc := dbctx.Background(context.Background())
	u := h.user(t, "u")
	f := h.fact(t, u, h.deck(t, u, "d", false), "q", "a")

	for _, kind := range allKinds {
		if _, err := h.moderation.SetToggle(dbc, u.ID, f.ID, kind, "why"); err != nil {
			t.Fatalf("SetToggle %s: %v", kind, err)
		}
		st, err := h.moderation.ClearToggle(dbc, u.ID, f.ID, kind)
		if err != nil || st.Active(kind) {
			t.Fatalf("ClearToggle %s: state=%+v err=%v", kind, st, err)
		}
		active, err := h.moderation.IsActive(dbc, u.ID, f.ID, kind)
		if err != nil || active {
			t.Fatalf("IsActive %s after clear: active=%v err=%v", kind, active, err)
		}
		// clearing an inactive toggle is a no-op
		if _, err := h.moderation.ClearToggle(dbc, u.ID, f.ID, kind); err != nil {
			t.Fatalf("ClearToggle %s again: %v", kind, err)
		}
	}
}

func TestClearStatusesKeepsMark(t *testing.T) {
	h := newHarness(t)
	dbc := dbctx.Background(context.Background())
	u := h.user(t, "u")
	f := h.fact(t, u, h.deck(t, u, "d", false), "q", "a")

	for _, kind := range allKinds {
		if _, err := h.moderation.SetToggle(dbc, u.ID, f.ID, kind, ""); err != nil {
			t.Fatalf("SetToggle %s: %v", kind, err)
		}
	}
	st, err := h.moderation.ClearStatuses(dbc, u.ID, f.ID)
	if err != nil {
		t.Fatalf("ClearStatuses: %v", err)
	}
	if st != (facts.ToggleState{Marked: true}) {
		t.Fatalf("ClearStatuses: expected only mark to remain, got %+v", st)
	}
}

func TestToggleStateIsPerUser(t *testing.T) {
	h := newHarness(t)
	dbc := dbctx.Background(context.Background())
	a := h.user(t, "a")
	b := h.user(t, "b")
	f := h.fact(t, a, h.deck(t, a, "d", true), "q", "a")

	if _, err := h.moderation.SetToggle(dbc, a.ID, f.ID, facts.KindSuspend, ""); err != nil {
		t.Fatalf("SetToggle: %v", err)
	}
	states, err := h.moderation.State(dbc, b.ID, []uuid.UUID{f.ID})
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if st := states[f.ID]; st != (facts.ToggleState{}) {
		t.Fatalf("State for b: expected zero state, got %+v", st)
	}
}

func TestModerationRejectsMissingFactAndBadKind(t *testing.T) {
	h := newHarness(t)
	dbc := dbctx.Background(context.Background())
	u := h.user(t, "u")

	_, err := h.moderation.SetToggle(dbc, u.ID, uuid.New(), facts.KindMark, "")
	expectCode(t, err, apierr.CodeNotFound, "SetToggle missing fact")
	_, err = h.moderation.ClearToggle(dbc, u.ID, uuid.New(), facts.KindMark)
	expectCode(t, err, apierr.CodeNotFound, "ClearToggle missing fact")

	f := h.fact(t, u, h.deck(t, u, "d", false), "q", "a")
	_, err = h.moderation.SetToggle(dbc, u.ID, f.ID, facts.Kind("star"), "")
	expectCode(t, err, apierr.CodeValidation, "SetToggle unknown kind")
}

func TestReportRationaleStoredOnlyForReports(t *testing.T) {
	h := newHarness(t)
	dbc := dbctx.Background(context.Background())
	u := h.user(t, "u")
	f := h.fact(t, u, h.deck(t, u, "d", false), "q", "a")

	if _, err := h.moderation.SetToggle(dbc, u.ID, f.ID, facts.KindSuspend, "ignored"); err != nil {
		t.Fatalf("SetToggle suspend: %v", err)
	}
	if _, err := h.moderation.SetToggle(dbc, u.ID, f.ID, facts.KindReport, "typo in answer"); err != nil {
		t.Fatalf("SetToggle report: %v", err)
	}

	var rows []*types.ModerationToggle
	if err := h.db.Where("fact_id = ?", f.ID).Order("kind").Find(&rows).Error; err != nil {
		t.Fatalf("load toggles: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 toggles, got %d", len(rows))
	}
	if rows[0].Kind != facts.KindReport || rows[0].Rationale != "typo in answer" {
		t.Fatalf("report row: %+v", rows[0])
	}
	if rows[1].Rationale != "" {
		t.Fatalf("suspend row kept a rationale: %q", rows[1].Rationale)
	}
}

func TestNextActionMarkerInversion(t *testing.T) {
	for _, kind := range allKinds {
		if got := facts.NextAction(kind, facts.ToggleState{}); got != facts.ActionApply {
			t.Fatalf("%s without state: got %s", kind, got)
		}
		if got := facts.NextAction(kind, facts.ToggleState{Suspended: true, Reported: true}); got != facts.ActionApply {
			t.Fatalf("%s suspended and reported: got %s", kind, got)
		}
		if got := facts.NextAction(kind, facts.ToggleState{Marked: true}); got != facts.ActionUndo {
			t.Fatalf("%s as marker: got %s", kind, got)
		}
	}
	if got := facts.ActionUndo.LogType(facts.KindSuspend); got != "undo_suspend" {
		t.Fatalf("undo suspend log type: %q", got)
	}
	if got := facts.ActionApply.LogType(facts.KindReport); got != "report" {
		t.Fatalf("report log type: %q", got)
	}
}
