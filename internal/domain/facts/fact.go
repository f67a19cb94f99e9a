package facts

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Fact is a single study item. Per-user mark/suspend/report state is never stored here;
// it lives in ModerationToggle rows and is projected per request.
type Fact struct {
	ID          uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"fact_id"`
	UserID      uuid.UUID                   `gorm:"type:uuid;column:user_id;not null;index" json:"user_id"`
	DeckID      uuid.UUID                   `gorm:"type:uuid;column:deck_id;not null;index" json:"deck_id"`
	Text        string                      `gorm:"column:text;type:text;not null" json:"text"`
	Answer      string                      `gorm:"column:answer;type:text;not null" json:"answer"`
	AnswerLines datatypes.JSONSlice[string] `gorm:"column:answer_lines" json:"answer_lines"`
	Category    string                      `gorm:"column:category;index" json:"category,omitempty"`
	Identifier  string                      `gorm:"column:identifier;index" json:"identifier,omitempty"`
	Extra       datatypes.JSONMap           `gorm:"column:extra" json:"extra,omitempty"`

	CreatedAt time.Time      `gorm:"not null;index" json:"create_date"`
	UpdatedAt time.Time      `gorm:"not null" json:"update_date"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Deck *Deck `gorm:"foreignKey:DeckID" json:"deck,omitempty"`
}

func (Fact) TableName() string { return "fact" }

func (f *Fact) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// Snapshot is the audit-friendly view of a fact's editable fields.
func (f *Fact) Snapshot() map[string]any {
	if f == nil {
		return nil
	}
	lines := []string(f.AnswerLines)
	if lines == nil {
		lines = []string{}
	}
	return map[string]any{
		"fact_id":      f.ID.String(),
		"user_id":      f.UserID.String(),
		"deck_id":      f.DeckID.String(),
		"text":         f.Text,
		"answer":       f.Answer,
		"answer_lines": lines,
		"category":     f.Category,
		"identifier":   f.Identifier,
		"extra":        map[string]any(f.Extra),
		"deleted":      f.DeletedAt.Valid,
	}
}
