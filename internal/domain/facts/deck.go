package facts

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Deck struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"column:title;not null" json:"title"`
	Public    bool      `gorm:"column:public;not null;index" json:"public"`
	CreatedBy uuid.UUID `gorm:"type:uuid;column:created_by;not null;index" json:"created_by"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Deck) TableName() string { return "deck" }

func (d *Deck) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// DeckPossession is the many-to-many join between users and the decks they hold.
type DeckPossession struct {
	UserID    uuid.UUID `gorm:"type:uuid;column:user_id;primaryKey" json:"user_id"`
	DeckID    uuid.UUID `gorm:"type:uuid;column:deck_id;primaryKey;index" json:"deck_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (DeckPossession) TableName() string { return "deck_possession" }
