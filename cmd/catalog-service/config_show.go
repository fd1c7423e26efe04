package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML, with the DSN password masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, err := cfg.YAML()
		if err != nil {
			return fmt.Errorf("rendering config: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), color.CyanString("# effective configuration"))
		fmt.Fprint(cmd.OutOrStdout(), out)

		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
