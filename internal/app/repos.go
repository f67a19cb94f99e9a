package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/factdeck-backend/internal/data/repos"
	"github.com/yungbote/factdeck-backend/internal/platform/logger"
)

type Repos struct {
	User    repos.UserRepo
	Fact    repos.FactRepo
	Deck    repos.DeckRepo
	Toggle  repos.ToggleRepo
	History repos.HistoryEntryRepo
	JobRun  repos.JobRunRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:    repos.NewUserRepo(db, log),
		Fact:    repos.NewFactRepo(db, log),
		Deck:    repos.NewDeckRepo(db, log),
		Toggle:  repos.NewToggleRepo(db, log),
		History: repos.NewHistoryEntryRepo(db, log),
		JobRun:  repos.NewJobRunRepo(db, log),
	}
}
