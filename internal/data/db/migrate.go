package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/factdeck-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(types.Models()...)
}

// EnsureFactIndexes adds indexes gorm tags cannot express. Statements are portable to sqlite.
func EnsureFactIndexes(db *gorm.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{
			// Default browse ordering within a deck.
			name: "idx_fact_deck_created",
			sql: `CREATE INDEX IF NOT EXISTS idx_fact_deck_created
				ON fact (deck_id, created_at, id)
				WHERE deleted_at IS NULL;`,
		},
		{
			name: "idx_fact_lower_category",
			sql:  `CREATE INDEX IF NOT EXISTS idx_fact_lower_category ON fact (lower(category));`,
		},
		{
			name: "idx_moderation_toggle_fact_kind",
			sql:  `CREATE INDEX IF NOT EXISTS idx_moderation_toggle_fact_kind ON moderation_toggle (fact_id, kind);`,
		},
		{
			name: "idx_history_entry_user_logged_at",
			sql:  `CREATE INDEX IF NOT EXISTS idx_history_entry_user_logged_at ON history_entry (user_id, logged_at);`,
		},
		{
			// Worker claim scan.
			name: "idx_job_run_status_created",
			sql:  `CREATE INDEX IF NOT EXISTS idx_job_run_status_created ON job_run (status, created_at);`,
		},
	}
	for _, st := range stmts {
		if err := db.Exec(st.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", st.name, err)
		}
	}
	return nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureFactIndexes(s.db); err != nil {
		s.log.Error("Fact index migration failed", "error", err)
		return err
	}
	return nil
}
