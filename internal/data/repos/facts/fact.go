package facts

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/factdeck-backend/internal/domain"
	"github.com/yungbote/factdeck-backend/internal/platform/dbctx"
	"github.com/yungbote/factdeck-backend/internal/platform/logger"
)

// ErrNotFound wraps gorm.ErrRecordNotFound for callers that should not import gorm.
var ErrNotFound = fmt.Errorf("not found: %w", gorm.ErrRecordNotFound)

type FactRepo interface {
	Create(dbc dbctx.Context, rows []*types.Fact) ([]*types.Fact, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Fact, error)
	GetByIDUnscoped(dbc dbctx.Context, id uuid.UUID) (*types.Fact, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Fact, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	SoftDelete(dbc dbctx.Context, id uuid.UUID) error
	Restore(dbc dbctx.Context, id uuid.UUID) error

	Execute(dbc dbctx.Context, q *FactQuery, skip, limit int) ([]*types.Fact, int64, error)
}

type factRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFactRepo(db *gorm.DB, baseLog *logger.Logger) FactRepo {
	return &factRepo{db: db, log: baseLog.With("repo", "FactRepo")}
}

func (r *factRepo) Create(dbc dbctx.Context, rows []*types.Fact) ([]*types.Fact, error) {
	if len(rows) == 0 {
		return []*types.Fact{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *factRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Fact, error) {
	return r.first(dbc.DB(r.db), id)
}

// GetByIDUnscoped also returns soft-deleted facts.
func (r *factRepo) GetByIDUnscoped(dbc dbctx.Context, id uuid.UUID) (*types.Fact, error) {
	return r.first(dbc.DB(r.db).Unscoped(), id)
}

func (r *factRepo) first(q *gorm.DB, id uuid.UUID) (*types.Fact, error) {
	if id == uuid.Nil {
		return nil, ErrNotFound
	}
	var f types.Fact
	err := q.Where("id = ?", id).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *factRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Fact, error) {
	var out []*types.Fact
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *factRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	res := dbc.DB(r.db).Model(&types.Fact{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *factRepo) SoftDelete(dbc dbctx.Context, id uuid.UUID) error {
	res := dbc.DB(r.db).Where("id = ?", id).Delete(&types.Fact{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *factRepo) Restore(dbc dbctx.Context, id uuid.UUID) error {
	res := dbc.DB(r.db).Unscoped().
		Model(&types.Fact{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Updates(map[string]interface{}{
			"deleted_at": nil,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
