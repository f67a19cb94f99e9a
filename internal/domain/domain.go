package domain

import (
	"github.com/yungbote/factdeck-backend/internal/domain/facts"
	"github.com/yungbote/factdeck-backend/internal/domain/history"
	"github.com/yungbote/factdeck-backend/internal/domain/jobs"
	"github.com/yungbote/factdeck-backend/internal/domain/user"
)

type User = user.User

type Fact = facts.Fact
type Deck = facts.Deck
type DeckPossession = facts.DeckPossession
type ModerationToggle = facts.ModerationToggle

type HistoryEntry = history.Entry

type JobRun = jobs.JobRun

// Models lists every table AutoMigrate manages.
func Models() []any {
	return []any{
		&User{},
		&Deck{},
		&DeckPossession{},
		&Fact{},
		&ModerationToggle{},
		&HistoryEntry{},
		&JobRun{},
	}
}
