package history

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/factdeck-backend/internal/data/repos/testutil"
	types "github.com/yungbote/factdeck-backend/internal/domain"
	"github.com/yungbote/factdeck-backend/internal/domain/history"
	"github.com/yungbote/factdeck-backend/internal/platform/dbctx"
)

func TestEntryRepo(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Background(context.Background())
	repo := NewEntryRepo(db, testutil.Logger(t))

	user := uuid.New()
	fact := uuid.New()
	base := time.Now().UTC().Add(-time.Minute)

	for _, e := range []*types.HistoryEntry{
		{
			UserID: user, FactID: &fact, LogType: history.LogSuspend, Time: base,
			Details: datatypes.JSON(`{"before":{"suspended":false}}`),
		},
		{UserID: user, FactID: &fact, LogType: history.LogUndoSuspend, Time: base.Add(time.Second)},
		{UserID: user, LogType: history.LogBrowse, Details: datatypes.JSON(`{"text":"x"}`)},
	} {
		if err := repo.Create(dbc, e); err != nil {
			t.Fatalf("Create %s: %v", e.LogType, err)
		}
	}

	byFact, err := repo.ListByFact(dbc, fact)
	if err != nil {
		t.Fatalf("ListByFact: %v", err)
	}
	if len(byFact) != 2 || byFact[0].LogType != history.LogSuspend || byFact[1].LogType != history.LogUndoSuspend {
		t.Fatalf("ListByFact: expected suspend then undo_suspend, got %+v", byFact)
	}

	n, err := repo.CountByFact(dbc, fact)
	if err != nil || n != 2 {
		t.Fatalf("CountByFact: n=%d err=%v", n, err)
	}

	byUser, err := repo.ListByUser(dbc, user, 1)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(byUser) != 1 || byUser[0].LogType != history.LogBrowse {
		t.Fatalf("ListByUser: expected newest browse entry, got %+v", byUser)
	}
	if byUser[0].FactID != nil {
		t.Fatalf("ListByUser: browse entry should have no fact, got %v", *byUser[0].FactID)
	}
}
