package facts

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Kind string

const (
	KindMark    Kind = "mark"
	KindSuspend Kind = "suspend"
	KindReport  Kind = "report"
)

func (k Kind) Valid() bool {
	switch k {
	case KindMark, KindSuspend, KindReport:
		return true
	}
	return false
}

// ModerationToggle exists while the user has the toggle active for the fact.
// Absence of the row means inactive.
type ModerationToggle struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;column:user_id;not null;uniqueIndex:idx_moderation_toggle_user_fact_kind,priority:1" json:"user_id"`
	FactID    uuid.UUID `gorm:"type:uuid;column:fact_id;not null;uniqueIndex:idx_moderation_toggle_user_fact_kind,priority:2;index" json:"fact_id"`
	Kind      Kind      `gorm:"column:kind;not null;uniqueIndex:idx_moderation_toggle_user_fact_kind,priority:3" json:"kind"`
	Rationale string    `gorm:"column:rationale;type:text" json:"rationale,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (ModerationToggle) TableName() string { return "moderation_toggle" }

func (t *ModerationToggle) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// ToggleState is one user's view of one fact.
type ToggleState struct {
	Marked    bool `json:"marked"`
	Suspended bool `json:"suspended"`
	Reported  bool `json:"reported"`
}

func (s ToggleState) Active(kind Kind) bool {
	switch kind {
	case KindMark:
		return s.Marked
	case KindSuspend:
		return s.Suspended
	case KindReport:
		return s.Reported
	}
	return false
}

func (s ToggleState) With(kind Kind, active bool) ToggleState {
	switch kind {
	case KindMark:
		s.Marked = active
	case KindSuspend:
		s.Suspended = active
	case KindReport:
		s.Reported = active
	}
	return s
}

type Action string

const (
	ActionApply Action = "apply"
	ActionUndo  Action = "undo"
)

// NextAction decides whether a caller-initiated toggle request applies or undoes the kind.
// A user who has marked the fact always undoes, whatever kind they invoke.
func NextAction(kind Kind, state ToggleState) Action {
	if state.Marked {
		return ActionUndo
	}
	return ActionApply
}

// LogType returns the history log type for performing action on kind.
func (a Action) LogType(kind Kind) string {
	if a == ActionUndo {
		return "undo_" + string(kind)
	}
	return string(kind)
}
