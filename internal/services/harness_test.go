package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/yungbote/factdeck-backend/internal/data/repos"
	"github.com/yungbote/factdeck-backend/internal/data/repos/testutil"
	types "github.com/yungbote/factdeck-backend/internal/domain"
	"github.com/yungbote/factdeck-backend/internal/observability"
	"github.com/yungbote/factdeck-backend/internal/platform/apierr"
	"github.com/yungbote/factdeck-backend/internal/platform/ctxutil"
	"github.com/yungbote/factdeck-backend/internal/platform/dbctx"
)

type harness struct {
	db      *gorm.DB
	metrics *observability.Metrics

	users    repos.UserRepo
	factRepo repos.FactRepo
	toggles  repos.ToggleRepo
	deckRepo repos.DeckRepo
	history  repos.HistoryEntryRepo
	jobRuns  repos.JobRunRepo

	decks      DeckService
	perms      PermissionResolver
	moderation ModerationEngine
	audit      AuditSink
	facts      FactService
	jobs       JobService
	ingest     IngestService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithHistory(t, nil)
}

// newHarnessWithHistory lets a test swap the history repo the audit sink writes to.
func newHarnessWithHistory(t *testing.T, wrap func(repos.HistoryEntryRepo) repos.HistoryEntryRepo) *harness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	h := &harness{
		db:       db,
		metrics:  observability.NewMetrics(),
		users:    repos.NewUserRepo(db, log),
		factRepo: repos.NewFactRepo(db, log),
		toggles:  repos.NewToggleRepo(db, log),
		deckRepo: repos.NewDeckRepo(db, log),
		history:  repos.NewHistoryEntryRepo(db, log),
		jobRuns:  repos.NewJobRunRepo(db, log),
	}
	sinkRepo := h.history
	if wrap != nil {
		sinkRepo = wrap(sinkRepo)
	}
	h.decks = NewDeckService(db, log, h.deckRepo, h.users)
	h.perms = NewPermissionResolver(log, h.deckRepo)
	h.moderation = NewModerationEngine(log, h.factRepo, h.toggles)
	h.audit = NewHistoryAuditSink(log, sinkRepo, h.metrics, nil)
	h.facts = NewFactService(log, h.factRepo, h.toggles, h.users, h.decks, h.perms, h.moderation, h.audit, h.metrics)
	h.jobs = NewJobService(log, h.jobRuns, h.metrics)
	h.ingest = NewIngestService(log, h.jobs, h.decks, h.facts)
	return h
}

func (h *harness) user(t *testing.T, name string) *types.User {
	t.Helper()
	return testutil.SeedUser(t, context.Background(), h.db, name)
}

func (h *harness) deck(t *testing.T, owner *types.User, title string, public bool) *types.Deck {
	t.Helper()
	d, err := h.decks.Create(as(owner), title, public)
	if err != nil {
		t.Fatalf("create deck %q: %v", title, err)
	}
	return d
}

func (h *harness) fact(t *testing.T, owner *types.User, deck *types.Deck, text, answer string) *types.Fact {
	t.Helper()
	v, err := h.facts.Create(as(owner), FactCreate{Text: text, Answer: answer, DeckID: deck.ID})
	if err != nil {
		t.Fatalf("create fact %q: %v", text, err)
	}
	return v.Fact
}

func (h *harness) historyFor(t *testing.T, factID uuid.UUID) []*types.HistoryEntry {
	t.Helper()
	rows, err := h.history.ListByFact(dbctx.Background(context.Background()), factID)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	return rows
}

func as(u *types.User) context.Context {
	if u == nil {
		return context.Background()
	}
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: u.ID})
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met within 2s")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// expectCode fails unless err is an apierr carrying code.
func expectCode(t *testing.T, err error, code string, what string) {
	t.Helper()
	if !apierr.IsCode(err, code) {
		t.Fatalf("%s: expected %s error, got %v", what, code, err)
	}
}

func lastLogType(t *testing.T, h *harness, factID uuid.UUID) string {
	t.Helper()
	entries := h.historyFor(t, factID)
	if len(entries) == 0 {
		t.Fatalf("no history for fact %s", factID)
	}
	return entries[len(entries)-1].LogType
}
