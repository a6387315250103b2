package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"versioning-backend/src/store"
)

// migrateCmd creates the Postgres schema
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the ci_builds table in Postgres",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if appConfig.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is not set; the in-memory store needs no migration")
		}

		pg, err := store.NewPostgresStore(appConfig.Store.DatabaseURL)
		if err != nil {
			return err
		}
		defer pg.Close()

		if err := pg.Migrate(context.Background()); err != nil {
			return err
		}
		appLogger.Info("ci_builds schema is up to date")
		return nil
	},
}
