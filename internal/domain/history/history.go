package history

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	LogBrowse               = "browse"
	LogUpdateFact           = "update_fact"
	LogDeleteFact           = "delete_fact"
	LogUndoDeleteFact       = "undo_delete_fact"
	LogMark                 = "mark"
	LogUndoMark             = "undo_mark"
	LogSuspend              = "suspend"
	LogUndoSuspend          = "undo_suspend"
	LogReport               = "report"
	LogUndoReport           = "undo_report"
	LogClearReportOrSuspend = "clear_report_or_suspend"
)

// Entry is an append-only audit row. Nothing updates or deletes it.
type Entry struct {
	ID      uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Time    time.Time      `gorm:"column:logged_at;not null;index" json:"time"`
	UserID  uuid.UUID      `gorm:"type:uuid;column:user_id;not null;index" json:"user_id"`
	FactID  *uuid.UUID     `gorm:"type:uuid;column:fact_id;index" json:"fact_id,omitempty"`
	LogType string         `gorm:"column:log_type;not null;index" json:"log_type"`
	Details datatypes.JSON `gorm:"column:details" json:"details"`
}

func (Entry) TableName() string { return "history_entry" }

func (e *Entry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	return nil
}
