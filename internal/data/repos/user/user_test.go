package user

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/factdeck-backend/internal/data/repos/testutil"
	types "github.com/yungbote/factdeck-backend/internal/domain"
	"github.com/yungbote/factdeck-backend/internal/platform/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	created, err := repo.Create(dbc, []*types.User{{ID: uuid.New(), Username: "alice"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("Create: expected 1 user, got %d", len(created))
	}

	gotByIDs, err := repo.GetByIDs(dbc, []uuid.UUID{created[0].ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(gotByIDs) != 1 || gotByIDs[0].ID != created[0].ID {
		t.Fatalf("GetByIDs: unexpected result: %+v", gotByIDs)
	}

	missing, err := repo.GetByUsername(dbc, "nobody")
	if err != nil || missing != nil {
		t.Fatalf("GetByUsername missing: got=%v err=%v", missing, err)
	}

	again, err := repo.Ensure(dbc, "alice")
	if err != nil {
		t.Fatalf("Ensure existing: %v", err)
	}
	if again.ID != created[0].ID {
		t.Fatalf("Ensure existing: expected %s, got %s", created[0].ID, again.ID)
	}

	bob, err := repo.Ensure(dbc, "bob")
	if err != nil || bob == nil || bob.ID == uuid.Nil {
		t.Fatalf("Ensure new: got=%v err=%v", bob, err)
	}

	names, err := repo.UsernamesByIDs(dbc, []uuid.UUID{created[0].ID, bob.ID})
	if err != nil {
		t.Fatalf("UsernamesByIDs: %v", err)
	}
	if names[created[0].ID] != "alice" || names[bob.ID] != "bob" {
		t.Fatalf("UsernamesByIDs: unexpected %v", names)
	}
}
