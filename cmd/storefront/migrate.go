package main

import (
	"fmt"

	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/spf13/cobra"
)

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema to DATABASE_URL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(*configPath)
			if err != nil {
				return err
			}

			store, err := repository.Open(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("repository.Open: %w", err)
			}
			defer store.Close()

			logger.Info("schema is up to date")
			return nil
		},
	}
}
