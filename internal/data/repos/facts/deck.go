package facts

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/factdeck-backend/internal/domain"
	"github.com/yungbote/factdeck-backend/internal/platform/dbctx"
	"github.com/yungbote/factdeck-backend/internal/platform/logger"
)

type DeckRepo interface {
	Create(dbc dbctx.Context, deck *types.Deck) (*types.Deck, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Deck, error)
	ListByPossessor(dbc dbctx.Context, userID uuid.UUID) ([]*types.Deck, error)
	AddPossessor(dbc dbctx.Context, deckID, userID uuid.UUID) (bool, error)
	IsPossessor(dbc dbctx.Context, userID, deckID uuid.UUID) (bool, error)
}

type deckRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDeckRepo(db *gorm.DB, baseLog *logger.Logger) DeckRepo {
	return &deckRepo{db: db, log: baseLog.With("repo", "DeckRepo")}
}

func (r *deckRepo) Create(dbc dbctx.Context, deck *types.Deck) (*types.Deck, error) {
	if err := dbc.DB(r.db).Create(deck).Error; err != nil {
		return nil, err
	}
	return deck, nil
}

func (r *deckRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Deck, error) {
	if id == uuid.Nil {
		return nil, ErrNotFound
	}
	var d types.Deck
	err := dbc.DB(r.db).Where("id = ?", id).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *deckRepo) ListByPossessor(dbc dbctx.Context, userID uuid.UUID) ([]*types.Deck, error) {
	var out []*types.Deck
	if userID == uuid.Nil {
		return out, nil
	}
	err := dbc.DB(r.db).
		Where("id IN (SELECT deck_id FROM deck_possession WHERE user_id = ?)", userID).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AddPossessor reports whether a new possession row was written.
func (r *deckRepo) AddPossessor(dbc dbctx.Context, deckID, userID uuid.UUID) (bool, error) {
	row := &types.DeckPossession{UserID: userID, DeckID: deckID}
	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "deck_id"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *deckRepo) IsPossessor(dbc dbctx.Context, userID, deckID uuid.UUID) (bool, error) {
	if userID == uuid.Nil || deckID == uuid.Nil {
		return false, nil
	}
	var n int64
	err := dbc.DB(r.db).
		Model(&types.DeckPossession{}).
		Where("user_id = ? AND deck_id = ?", userID, deckID).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
