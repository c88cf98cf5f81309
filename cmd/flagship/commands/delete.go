package commands

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	deleteForce bool
)

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a feature flag",
	Long: `Delete a flag definition from a writable source.

Examples:
  flagship delete feature_x --env staging --source postgres
  flagship delete feature_x --source postgres --force`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		ctx := context.Background()
		w, closeFn, flagEnv, err := writer(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		// Confirm deletion unless --force
		if !deleteForce && !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "Are you sure you want to delete flag '%s' from environment '%s'? (y/N): ", name, flagEnv)
			reader := bufio.NewReader(cmd.InOrStdin())
			response, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read confirmation: %w", err)
			}
			response = strings.ToLower(strings.TrimSpace(response))
			if response != "y" && response != "yes" {
				fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled")
				return nil
			}
		}

		if err := w.DeleteDefinition(ctx, flagEnv, name); err != nil {
			return fmt.Errorf("failed to delete flag: %w", err)
		}

		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted flag '%s' from environment '%s'\n", name, flagEnv)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().BoolVar(&deleteForce, "force", false, "Skip confirmation prompt")
}
