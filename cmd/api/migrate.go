package main

import (
	"cardvault/internal/app/bootstrap"

	"github.com/spf13/cobra"
)

func migrateCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the users and payment_cards tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			database, repo, err := bootstrap.OpenRepository(cmd.Context(), cfg.Database, logger)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := repo.Migrate(cmd.Context()); err != nil {
				return err
			}
			logger.Info("schema migrated",
				"event", "schema_migrated",
				"module", "cmd/api",
				"layer", "platform",
				"database_driver", cfg.Database.Driver,
			)
			return nil
		},
	}
}
