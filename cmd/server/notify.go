package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"eventregistration/internal/domain"
)

func notifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "notify",
		Short: "Email the reminder to every registrant, acting as the host",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := commonRun()
			if err != nil {
				return err
			}
			if cfg.HostEmail == "" {
				return errors.New("HOST_EMAIL must be set to send notifications")
			}
			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.host.NotifyAll(cmd.Context(), domain.NewIdentity("cli", cfg.HostEmail))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d of %d)\n", res.Message, res.Sent, res.Total)
			return nil
		},
	}
}
