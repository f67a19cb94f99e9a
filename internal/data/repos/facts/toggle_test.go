package facts

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/factdeck-backend/internal/data/repos/testutil"
	types "github.com/yungbote/factdeck-backend/internal/domain"
	"github.com/yungbote/factdeck-backend/internal/domain/facts"
	"github.com/yungbote/factdeck-backend/internal/platform/dbctx"
)

func TestToggleRepoInsertIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Background(ctx)
	repo := NewToggleRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, db, "u")
	d := testutil.SeedDeck(t, ctx, db, u.ID, "d", false)
	f := testutil.SeedFact(t, ctx, db, u.ID, d.ID, "q", "a")

	inserted, err := repo.Insert(dbc, &types.ModerationToggle{UserID: u.ID, FactID: f.ID, Kind: facts.KindSuspend})
	if err != nil || !inserted {
		t.Fatalf("Insert: inserted=%v err=%v", inserted, err)
	}
	inserted, err = repo.Insert(dbc, &types.ModerationToggle{UserID: u.ID, FactID: f.ID, Kind: facts.KindSuspend})
	if err != nil || inserted {
		t.Fatalf("Insert duplicate: inserted=%v err=%v", inserted, err)
	}

	n, err := repo.Count(dbc, u.ID, f.ID, facts.KindSuspend)
	if err != nil || n != 1 {
		t.Fatalf("Count: n=%d err=%v", n, err)
	}

	// a different kind is its own row
	inserted, err = repo.Insert(dbc, &types.ModerationToggle{UserID: u.ID, FactID: f.ID, Kind: facts.KindMark})
	if err != nil || !inserted {
		t.Fatalf("Insert mark: inserted=%v err=%v", inserted, err)
	}
}

func TestToggleRepoDeleteAndStates(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Background(ctx)
	repo := NewToggleRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, db, "u")
	other := testutil.SeedUser(t, ctx, db, "other")
	d := testutil.SeedDeck(t, ctx, db, u.ID, "d", false)
	f1 := testutil.SeedFact(t, ctx, db, u.ID, d.ID, "q1", "a1")
	f2 := testutil.SeedFact(t, ctx, db, u.ID, d.ID, "q2", "a2")

	testutil.SeedToggle(t, ctx, db, u.ID, f1.ID, facts.KindMark, "")
	testutil.SeedToggle(t, ctx, db, u.ID, f1.ID, facts.KindSuspend, "")
	testutil.SeedToggle(t, ctx, db, u.ID, f1.ID, facts.KindReport, "wrong answer")
	testutil.SeedToggle(t, ctx, db, other.ID, f2.ID, facts.KindReport, "dup")

	states, err := repo.StatesFor(dbc, u.ID, []uuid.UUID{f1.ID, f2.ID})
	if err != nil {
		t.Fatalf("StatesFor: %v", err)
	}
	if got, want := states[f1.ID], (facts.ToggleState{Marked: true, Suspended: true, Reported: true}); got != want {
		t.Fatalf("StatesFor f1: got %+v want %+v", got, want)
	}
	if got := states[f2.ID]; got != (facts.ToggleState{}) {
		t.Fatalf("StatesFor f2: another user's report leaked into %+v", got)
	}

	removed, err := repo.Delete(dbc, u.ID, f1.ID, facts.KindSuspend, facts.KindReport)
	if err != nil || removed != 2 {
		t.Fatalf("Delete: removed=%d err=%v", removed, err)
	}
	removed, err = repo.Delete(dbc, u.ID, f1.ID, facts.KindSuspend)
	if err != nil || removed != 0 {
		t.Fatalf("Delete again: removed=%d err=%v", removed, err)
	}

	active, err := repo.Exists(dbc, u.ID, f1.ID, facts.KindMark)
	if err != nil || !active {
		t.Fatalf("Exists mark: active=%v err=%v", active, err)
	}

	reports, err := repo.ReportsFor(dbc, []uuid.UUID{f1.ID, f2.ID})
	if err != nil {
		t.Fatalf("ReportsFor: %v", err)
	}
	if len(reports) != 1 || reports[0].UserID != other.ID || reports[0].Rationale != "dup" {
		t.Fatalf("ReportsFor: expected only other's report, got %+v", reports)
	}

	anon, err := repo.StatesFor(dbc, uuid.Nil, []uuid.UUID{f1.ID})
	if err != nil {
		t.Fatalf("StatesFor anonymous: %v", err)
	}
	if got := anon[f1.ID]; got != (facts.ToggleState{}) {
		t.Fatalf("StatesFor anonymous: expected zero state, got %+v", got)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), true},
		{&pgconn.PgError{Code: "23503"}, false},
		{gorm.ErrDuplicatedKey, true},
		{errors.New("boom"), false},
	}
	for _, tc := range cases {
		if got := isUniqueViolation(tc.err); got != tc.want {
			t.Fatalf("isUniqueViolation(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
