package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/factdeck-backend/internal/domain"
	"github.com/yungbote/factdeck-backend/internal/domain/facts"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, username string) *types.User {
	tb.Helper()
	u := &types.User{ID: uuid.New(), Username: username}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedDeck creates a deck possessed by its creator.
func SeedDeck(tb testing.TB, ctx context.Context, tx *gorm.DB, creator uuid.UUID, title string, public bool) *types.Deck {
	tb.Helper()
	d := &types.Deck{ID: uuid.New(), Title: title, Public: public, CreatedBy: creator}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed deck: %v", err)
	}
	SeedPossession(tb, ctx, tx, creator, d.ID)
	return d
}

func SeedPossession(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, deckID uuid.UUID) {
	tb.Helper()
	p := &types.DeckPossession{UserID: userID, DeckID: deckID}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed possession: %v", err)
	}
}

type FactOpt func(*types.Fact)

func WithCategory(c string) FactOpt { return func(f *types.Fact) { f.Category = c } }

func WithIdentifier(id string) FactOpt { return func(f *types.Fact) { f.Identifier = id } }

func WithCreatedAt(t time.Time) FactOpt {
	return func(f *types.Fact) {
		f.CreatedAt = t
		f.UpdatedAt = t
	}
}

func SeedFact(tb testing.TB, ctx context.Context, tx *gorm.DB, owner, deckID uuid.UUID, text, answer string, opts ...FactOpt) *types.Fact {
	tb.Helper()
	f := &types.Fact{
		ID:          uuid.New(),
		UserID:      owner,
		DeckID:      deckID,
		Text:        text,
		Answer:      answer,
		AnswerLines: datatypes.JSONSlice[string]{answer},
		Extra:       datatypes.JSONMap{},
	}
	for _, opt := range opts {
		opt(f)
	}
	if err := tx.WithContext(ctx).Create(f).Error; err != nil {
		tb.Fatalf("seed fact: %v", err)
	}
	return f
}

func SeedToggle(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, factID uuid.UUID, kind facts.Kind, rationale string) *types.ModerationToggle {
	tb.Helper()
	t := &types.ModerationToggle{ID: uuid.New(), UserID: userID, FactID: factID, Kind: kind, Rationale: rationale}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed toggle: %v", err)
	}
	return t
}

func CountRows(tb testing.TB, tx *gorm.DB, model any, where string, args ...any) int64 {
	tb.Helper()
	var n int64
	q := tx.Model(model)
	if where != "" {
		q = q.Where(where, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		tb.Fatalf("count rows: %v", err)
	}
	return n
}
