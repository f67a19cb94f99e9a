package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/factdeck-backend/internal/app"
)

func newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <username>",
		Short: "Ensure a user exists and print a bearer token for it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			cfg.Redis.Addr = ""
			a, err := app.New(cmd.Context(), log, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			user, token, err := a.Services.Auth.IssueForUsername(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user_id=%s\n%s\n", user.ID, token)
			return nil
		},
	}
}
