package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/bucketflags/internal/cli"
	"github.com/TimurManjosov/bucketflags/internal/flags"
)

var getCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Show a single feature flag",
	Long: `Show the definition of one flag.

Example:
  flagship get example-session --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		reg, err := loadRegistry(context.Background())
		if err != nil {
			return fmt.Errorf("failed to load flags: %w", err)
		}

		def, ok := reg.Get(name)
		if !ok {
			return fmt.Errorf("flag '%s' not found", name)
		}

		if quiet {
			return nil
		}
		return cli.PrintRegistry(cmd.OutOrStdout(),
			flags.NewRegistry(map[string]flags.Definition{name: def}), cli.OutputFormat(format))
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
