package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/factdeck-backend/internal/data/repos/facts"
	"github.com/yungbote/factdeck-backend/internal/data/repos/history"
	"github.com/yungbote/factdeck-backend/internal/data/repos/jobs"
	"github.com/yungbote/factdeck-backend/internal/data/repos/user"
	"github.com/yungbote/factdeck-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type FactRepo = facts.FactRepo
type DeckRepo = facts.DeckRepo
type ToggleRepo = facts.ToggleRepo
type FactQuery = facts.FactQuery

type HistoryEntryRepo = history.EntryRepo

type JobRunRepo = jobs.JobRunRepo

var (
	ErrNotFound    = facts.ErrNotFound
	BuildFactQuery = facts.BuildFactQuery
)

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewFactRepo(db *gorm.DB, baseLog *logger.Logger) FactRepo { return facts.NewFactRepo(db, baseLog) }
func NewDeckRepo(db *gorm.DB, baseLog *logger.Logger) DeckRepo { return facts.NewDeckRepo(db, baseLog) }
func NewToggleRepo(db *gorm.DB, baseLog *logger.Logger) ToggleRepo {
	return facts.NewToggleRepo(db, baseLog)
}

func NewHistoryEntryRepo(db *gorm.DB, baseLog *logger.Logger) HistoryEntryRepo {
	return history.NewEntryRepo(db, baseLog)
}

func NewJobRunRepo(db *gorm.DB, baseLog *logger.Logger) JobRunRepo {
	return jobs.NewJobRunRepo(db, baseLog)
}
