package main

import (
	"github.com/spf13/cobra"

	"eventregistration/internal/repository/postgres"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the registrant and archive tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := commonRun()
			if err != nil {
				return err
			}
			db, err := openDB(cmd.Context(), cfg.DBUrl)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgres.CreateSchema(cmd.Context(), db); err != nil {
				return err
			}
			logger.Info("database schema ready")
			return nil
		},
	}
}
