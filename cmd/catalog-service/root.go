package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-catalog/shared/shell/config"
)

var (
	cfg *config.Config

	flagConfig  string
	flagNoColor bool
)

var rootCmd = &cobra.Command{
	Use:   "catalog-service",
	Short: "Library catalog backend: books, copies and the borrow/return workflow",
	Long: `catalog-service serves the library catalog HTTP API on top of PostgreSQL.

Configuration is read from defaults, an optional YAML file and CATALOG_* environment
variables, e.g. CATALOG_POSTGRES_DSN or CATALOG_HTTP_ADDR.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if flagNoColor {
			color.NoColor = true
		}

		loaded, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		cfg = loaded

		return nil
	},
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: $CATALOG_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(serveCmd, migrateCmd, configCmd)
}
