package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/factdeck-backend/internal/data/repos/testutil"
	types "github.com/yungbote/factdeck-backend/internal/domain"
	"github.com/yungbote/factdeck-backend/internal/domain/facts"
	"github.com/yungbote/factdeck-backend/internal/platform/dbctx"
)

func TestResolvePermission(t *testing.T) {
	h := newHarness(t)
	dbc := dbctx.Background(context.Background())
	owner := h.user(t, "owner")
	editor := h.user(t, "editor")
	stranger := h.user(t, "stranger")
	d := h.deck(t, owner, "d", true)
	testutil.SeedPossession(t, context.Background(), h.db, editor.ID, d.ID)
	f := h.fact(t, owner, d, "q", "a")

	cases := []struct {
		name string
		user uuid.UUID
		want facts.Permission
	}{
		{"owner", owner.ID, facts.PermissionOwner},
		{"possessor", editor.ID, facts.PermissionEditor},
		{"stranger", stranger.ID, facts.PermissionViewer},
		{"anonymous", uuid.Nil, facts.PermissionViewer},
	}
	for _, tc := range cases {
		if got := h.perms.Resolve(dbc, tc.user, f); got != tc.want {
			t.Fatalf("Resolve %s: got %s want %s", tc.name, got, tc.want)
		}
	}

	many := h.perms.ResolveMany(dbc, editor.ID, []*types.Fact{f})
	if many[f.ID] != facts.PermissionEditor {
		t.Fatalf("ResolveMany: got %s", many[f.ID])
	}

	// public deck: readable by anyone, still only viewer
	if !h.perms.CanAccess(dbc, stranger.ID, f) {
		t.Fatalf("CanAccess: stranger should read a public deck")
	}
}

func TestCanAccessPrivateDeck(t *testing.T) {
	h := newHarness(t)
	dbc := dbctx.Background(context.Background())
	owner := h.user(t, "owner")
	stranger := h.user(t, "stranger")
	f := h.fact(t, owner, h.deck(t, owner, "d", false), "q", "a")

	if !h.perms.CanAccess(dbc, owner.ID, f) {
		t.Fatalf("owner lost access to own fact")
	}
	if h.perms.CanAccess(dbc, stranger.ID, f) || h.perms.CanAccess(dbc, uuid.Nil, f) {
		t.Fatalf("private deck readable by a non-possessor")
	}
}

func TestVisibilityTable(t *testing.T) {
	cases := map[facts.Permission]facts.FieldVisibility{
		facts.PermissionOwner:     {CanMutate: true, SeesAllReports: true},
		facts.PermissionEditor:    {CanMutate: true},
		facts.PermissionViewer:    {},
		facts.Permission("admin"): {},
	}
	for p, want := range cases {
		if got := facts.Visibility(p); got != want {
			t.Fatalf("Visibility(%s): got %+v want %+v", p, got, want)
		}
	}
}

func TestRedact(t *testing.T) {
	viewer := uuid.New()
	other := uuid.New()
	build := func() *FactView {
		return &FactView{Reports: []ReportDetail{
			{ReporterID: other, Rationale: "theirs"},
			{ReporterID: viewer, Rationale: "mine"},
		}}
	}

	v := Redact(build(), facts.PermissionViewer, viewer)
	if len(v.Reports) != 1 || v.Reports[0].Rationale != "mine" {
		t.Fatalf("viewer: expected only own report, got %+v", v.Reports)
	}
	if v = Redact(build(), facts.PermissionEditor, viewer); len(v.Reports) != 1 {
		t.Fatalf("editor: expected only own report, got %+v", v.Reports)
	}
	if v = Redact(build(), facts.PermissionOwner, viewer); len(v.Reports) != 2 {
		t.Fatalf("owner: expected all reports, got %+v", v.Reports)
	}
	if v = Redact(build(), facts.PermissionViewer, uuid.Nil); v.Reports != nil {
		t.Fatalf("anonymous: expected no reports, got %+v", v.Reports)
	}
	if Redact(nil, facts.PermissionViewer, viewer) != nil {
		t.Fatalf("Redact(nil) should stay nil")
	}
}
