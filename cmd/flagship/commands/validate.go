package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/bucketflags/internal/flags"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate flag configuration",
	Long: `Load and validate the configured flag source.

Exits with a non-zero status and lists every offending field when the
configuration is invalid.

Examples:
  flagship validate
  flagship validate --files configs/flags/default.toml,configs/flags/local.toml --env staging`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry(context.Background())
		if err != nil {
			var cerr *flags.ConfigurationError
			if errors.As(err, &cerr) && !quiet {
				fields := make([]string, 0, len(cerr.Errors))
				for field := range cerr.Errors {
					fields = append(fields, field)
				}
				sort.Strings(fields)
				for _, field := range fields {
					fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", field, cerr.Errors[field])
				}
			}
			return err
		}

		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %d flags (%s)\n", reg.Len(), reg.Fingerprint())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
