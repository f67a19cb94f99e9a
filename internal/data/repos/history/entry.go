package history

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/factdeck-backend/internal/domain"
	"github.com/yungbote/factdeck-backend/internal/platform/dbctx"
	"github.com/yungbote/factdeck-backend/internal/platform/logger"
)

// EntryRepo is append-only: there are no update or delete methods.
type EntryRepo interface {
	Create(dbc dbctx.Context, entry *types.HistoryEntry) error
	ListByFact(dbc dbctx.Context, factID uuid.UUID) ([]*types.HistoryEntry, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.HistoryEntry, error)
	CountByFact(dbc dbctx.Context, factID uuid.UUID) (int64, error)
}

type entryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEntryRepo(db *gorm.DB, baseLog *logger.Logger) EntryRepo {
	return &entryRepo{db: db, log: baseLog.With("repo", "HistoryEntryRepo")}
}

func (r *entryRepo) Create(dbc dbctx.Context, entry *types.HistoryEntry) error {
	return dbc.DB(r.db).Create(entry).Error
}

func (r *entryRepo) ListByFact(dbc dbctx.Context, factID uuid.UUID) ([]*types.HistoryEntry, error) {
	var out []*types.HistoryEntry
	err := dbc.DB(r.db).
		Where("fact_id = ?", factID).
		Order("logged_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *entryRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.HistoryEntry, error) {
	var out []*types.HistoryEntry
	q := dbc.DB(r.db).Where("user_id = ?", userID).Order("logged_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *entryRepo) CountByFact(dbc dbctx.Context, factID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.HistoryEntry{}).Where("fact_id = ?", factID).Count(&n).Error
	return n, err
}
