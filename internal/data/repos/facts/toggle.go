package facts

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/factdeck-backend/internal/domain"
	"github.com/yungbote/factdeck-backend/internal/domain/facts"
	"github.com/yungbote/factdeck-backend/internal/platform/dbctx"
	"github.com/yungbote/factdeck-backend/internal/platform/logger"
)

const pgUniqueViolation = "23505"

type ToggleRepo interface {
	// Insert is a no-op when the row already exists. It reports whether a row was written.
	Insert(dbc dbctx.Context, row *types.ModerationToggle) (bool, error)
	Delete(dbc dbctx.Context, userID, factID uuid.UUID, kinds ...facts.Kind) (int64, error)
	Exists(dbc dbctx.Context, userID, factID uuid.UUID, kind facts.Kind) (bool, error)
	Count(dbc dbctx.Context, userID, factID uuid.UUID, kind facts.Kind) (int64, error)
	StatesFor(dbc dbctx.Context, userID uuid.UUID, factIDs []uuid.UUID) (map[uuid.UUID]facts.ToggleState, error)
	ReportsFor(dbc dbctx.Context, factIDs []uuid.UUID) ([]*types.ModerationToggle, error)
}

type toggleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewToggleRepo(db *gorm.DB, baseLog *logger.Logger) ToggleRepo {
	return &toggleRepo{db: db, log: baseLog.With("repo", "ToggleRepo")}
}

func (r *toggleRepo) Insert(dbc dbctx.Context, row *types.ModerationToggle) (bool, error) {
	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "fact_id"}, {Name: "kind"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			r.log.Debug("toggle insert raced, treating as applied", "fact_id", row.FactID, "kind", row.Kind)
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func (r *toggleRepo) Delete(dbc dbctx.Context, userID, factID uuid.UUID, kinds ...facts.Kind) (int64, error) {
	if len(kinds) == 0 {
		return 0, nil
	}
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, string(k))
	}
	res := dbc.DB(r.db).
		Where("user_id = ? AND fact_id = ? AND kind IN ?", userID, factID, names).
		Delete(&types.ModerationToggle{})
	return res.RowsAffected, res.Error
}

func (r *toggleRepo) Exists(dbc dbctx.Context, userID, factID uuid.UUID, kind facts.Kind) (bool, error) {
	n, err := r.Count(dbc, userID, factID, kind)
	return n > 0, err
}

func (r *toggleRepo) Count(dbc dbctx.Context, userID, factID uuid.UUID, kind facts.Kind) (int64, error) {
	var n int64
	err := dbc.DB(r.db).
		Model(&types.ModerationToggle{}).
		Where("user_id = ? AND fact_id = ? AND kind = ?", userID, factID, string(kind)).
		Count(&n).Error
	return n, err
}

// StatesFor returns one entry per requested fact, inactive when the user has no rows.
func (r *toggleRepo) StatesFor(dbc dbctx.Context, userID uuid.UUID, factIDs []uuid.UUID) (map[uuid.UUID]facts.ToggleState, error) {
	out := make(map[uuid.UUID]facts.ToggleState, len(factIDs))
	for _, id := range factIDs {
		out[id] = facts.ToggleState{}
	}
	if userID == uuid.Nil || len(factIDs) == 0 {
		return out, nil
	}
	var rows []*types.ModerationToggle
	err := dbc.DB(r.db).
		Where("user_id = ? AND fact_id IN ?", userID, factIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.FactID] = out[row.FactID].With(row.Kind, true)
	}
	return out, nil
}

func (r *toggleRepo) ReportsFor(dbc dbctx.Context, factIDs []uuid.UUID) ([]*types.ModerationToggle, error) {
	var out []*types.ModerationToggle
	if len(factIDs) == 0 {
		return out, nil
	}
	err := dbc.DB(r.db).
		Where("fact_id IN ? AND kind = ?", factIDs, string(facts.KindReport)).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
