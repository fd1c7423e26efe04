package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-catalog/catalog/postgresengine"
	"github.com/AntonStoeckl/library-catalog/shared/shell/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the catalog tables if they do not exist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.RequireDSN(); err != nil {
			return err
		}

		logger, err := config.NewLogger(cfg.Log, os.Stderr)
		if err != nil {
			return err
		}

		ctx := cmd.Context()

		store, closeDB, err := config.OpenStore(ctx, cfg.Postgres, postgresengine.WithLogger(logger))
		if err != nil {
			return err
		}
		defer closeDB()

		if err := store.Migrate(ctx); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓"), "schema is up to date")

		return nil
	},
}
