package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/bucketflags/internal/flags"
)

var (
	importDryRun bool
	importForce  bool
)

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import flags from TOML files",
	Long: `Import flag definitions from TOML files into a writable source.

The files are read the same way the file source reads them: the selected
--env section is laid over [default] and the result is validated before
anything is written.

Examples:
  flagship import configs/flags/default.toml --source postgres
  flagship import configs/flags/default.toml --env staging --source postgres --dry-run`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		out := cmd.OutOrStdout()

		w, closeFn, flagEnv, err := writer(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		reg, err := flags.LoadRegistry(ctx, flags.FileSource{Files: args, Env: flagEnv})
		if err != nil {
			return fmt.Errorf("failed to read files: %w", err)
		}
		if reg.Len() == 0 {
			return fmt.Errorf("no flags found in %v", args)
		}

		if verbose {
			fmt.Fprintf(out, "Found %d flag(s) to import\n", reg.Len())
		}

		// Dry run mode - just validate and show what would be imported
		if importDryRun {
			fmt.Fprintln(out, "Dry run mode - the following flags would be imported:")
			for _, name := range reg.Names() {
				def, _ := reg.Get(name)
				fmt.Fprintf(out, "  - %s (scheme: %s, enabled: %v, env: %s)\n", name, def.Scheme, def.Enabled, flagEnv)
			}
			return nil
		}

		successCount := 0
		errorCount := 0
		for _, name := range reg.Names() {
			def, _ := reg.Get(name)
			if err := w.UpsertDefinition(ctx, flagEnv, name, def); err != nil {
				errorCount++
				fmt.Fprintf(os.Stderr, "Failed to import flag '%s': %v\n", name, err)
				if !importForce {
					return fmt.Errorf("import failed, use --force to continue on errors")
				}
				continue
			}
			successCount++
		}

		if !quiet {
			fmt.Fprintf(out, "Import complete: %d succeeded, %d failed\n", successCount, errorCount)
		}
		if errorCount > 0 {
			return fmt.Errorf("import completed with errors")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate without importing")
	importCmd.Flags().BoolVar(&importForce, "force", false, "Continue on errors")
}
