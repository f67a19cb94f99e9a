package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/factdeck-backend/internal/clients/redis"
)

func newAlertsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Operator alert channel tools",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "tail",
		Short: "Print operator alerts (e.g. failed history writes) as they are published",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()
			if cfg.Redis.Addr == "" {
				return fmt.Errorf("REDIS_ADDR is not set")
			}
			bus, err := redis.NewAlertBus(log, cfg.Redis.Addr, cfg.Redis.AlertChannel)
			if err != nil {
				return err
			}
			defer bus.Close()

			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			if err := bus.StartForwarder(cmd.Context(), func(a redis.Alert) {
				_ = enc.Encode(a)
			}); err != nil {
				return err
			}
			log.Info("tailing alerts", "channel", cfg.Redis.AlertChannel)
			<-cmd.Context().Done()
			return nil
		},
	})
	return cmd
}
