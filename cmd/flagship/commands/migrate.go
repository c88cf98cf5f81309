package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

type migrator interface {
	Migrate(ctx context.Context) error
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the flag definitions table",
	Long: `Create the flag_definitions table in PostgreSQL if it does not exist.

Example:
  flagship migrate --source postgres --dsn postgres://localhost/flags`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		src, _, err := openSource(ctx)
		if err != nil {
			return err
		}
		defer src.Close()

		m, ok := src.(migrator)
		if !ok {
			return fmt.Errorf("source has no schema to migrate, use --source postgres")
		}
		if err := m.Migrate(ctx); err != nil {
			return err
		}

		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
