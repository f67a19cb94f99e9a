package main

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/factdeck-backend/internal/app"
)

func newServeCmd() *cobra.Command {
	var noWorker bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the ingest worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			if noWorker {
				cfg.Worker.Enabled = false
			}
			a, err := app.New(cmd.Context(), log, cfg)
			if err != nil {
				log.Error("app init failed", "error", err)
				log.Sync()
				return err
			}
			defer a.Close()
			return a.Run(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&noWorker, "no-worker", false, "serve HTTP only; leave queued jobs for another process")
	return cmd
}
