package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/bucketflags/internal/cli"
	"github.com/TimurManjosov/bucketflags/internal/flags"
)

var listActiveOnly bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all feature flags",
	Long: `List all flag definitions of the selected environment.

Examples:
  flagship list --env staging
  flagship list --format json
  flagship list --active-only`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry(context.Background())
		if err != nil {
			return fmt.Errorf("failed to load flags: %w", err)
		}

		if listActiveOnly {
			active := make(map[string]flags.Definition)
			for name, def := range reg.Definitions() {
				if def.Enabled > 0 {
					active[name] = def
				}
			}
			reg = flags.NewRegistry(active)
		}

		if quiet {
			return nil
		}
		if reg.Len() == 0 && cli.OutputFormat(format) == cli.FormatTable {
			fmt.Fprintln(cmd.OutOrStdout(), "No flags found")
			return nil
		}
		return cli.PrintRegistry(cmd.OutOrStdout(), reg, cli.OutputFormat(format))
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&listActiveOnly, "active-only", false, "Show only flags with enabled > 0")
}
