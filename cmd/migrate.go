package main

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/factdeck-backend/internal/app"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update tables and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()
			pg, err := app.OpenDB(log, cfg)
			if err != nil {
				return err
			}
			log.Info("migration complete")
			return pg.Close()
		},
	}
}
