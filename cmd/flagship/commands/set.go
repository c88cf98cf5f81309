package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/bucketflags/internal/flags"
)

var (
	setScheme  string
	setEnabled float64
)

var setCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Create or update a feature flag",
	Long: `Create or update a flag definition in a writable source.

The definition is validated before it is stored. Running servers pick the
change up on their next full reload (SIGHUP).

Examples:
  flagship set new_checkout --scheme session --enabled 0.1 --source postgres
  flagship set new_checkout --enabled 0 --env staging --source postgres`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		def := flags.Definition{Scheme: flags.Scheme(setScheme), Enabled: setEnabled}
		if err := flags.Validate(map[string]flags.Definition{name: def}); err != nil {
			return err
		}

		ctx := context.Background()
		w, closeFn, flagEnv, err := writer(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		if err := w.UpsertDefinition(ctx, flagEnv, name, def); err != nil {
			return fmt.Errorf("failed to store flag: %w", err)
		}

		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "Stored flag '%s' in environment '%s'\n", name, flagEnv)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setCmd)

	setCmd.Flags().StringVar(&setScheme, "scheme", "", "Bucketing scheme (random, session); empty uses session")
	setCmd.Flags().Float64Var(&setEnabled, "enabled", 0, "Enabled fraction in [0, 1]")
	_ = setCmd.MarkFlagRequired("enabled")
}
