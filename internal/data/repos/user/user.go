package user

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/factdeck-backend/internal/domain"
	"github.com/yungbote/factdeck-backend/internal/platform/dbctx"
	"github.com/yungbote/factdeck-backend/internal/platform/logger"
)

type UserRepo interface {
	Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error)
	GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error)
	GetByUsername(dbc dbctx.Context, username string) (*types.User, error)
	// Ensure returns the user with username, creating it when absent.
	Ensure(dbc dbctx.Context, username string) (*types.User, error)
	UsernamesByIDs(dbc dbctx.Context, userIDs []uuid.UUID) (map[uuid.UUID]string, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error) {
	if len(users) == 0 {
		return []*types.User{}, nil
	}
	if err := dbc.DB(ur.db).Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (ur *userRepo) GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error) {
	var results []*types.User
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := dbc.DB(ur.db).Where("id IN ?", userIDs).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) GetByUsername(dbc dbctx.Context, username string) (*types.User, error) {
	var u types.User
	err := dbc.DB(ur.db).Where("username = ?", username).Limit(1).Find(&u).Error
	if err != nil {
		return nil, err
	}
	if u.ID == uuid.Nil {
		return nil, nil
	}
	return &u, nil
}

func (ur *userRepo) Ensure(dbc dbctx.Context, username string) (*types.User, error) {
	row := &types.User{ID: uuid.New(), Username: username}
	err := dbc.DB(ur.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "username"}}, DoNothing: true}).
		Create(row).Error
	if err != nil {
		return nil, err
	}
	return ur.GetByUsername(dbc, username)
}

func (ur *userRepo) UsernamesByIDs(dbc dbctx.Context, userIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	users, err := ur.GetByIDs(dbc, userIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		out[u.ID] = u.Username
	}
	return out, nil
}
