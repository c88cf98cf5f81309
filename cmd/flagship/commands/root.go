package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/TimurManjosov/bucketflags/internal/cli"
	"github.com/TimurManjosov/bucketflags/internal/client"
	"github.com/TimurManjosov/bucketflags/internal/flags"
	"github.com/TimurManjosov/bucketflags/internal/logging"
	"github.com/TimurManjosov/bucketflags/internal/store"
)

var (
	// Global flags
	env     string
	source  string
	files   []string
	dsn     string
	server  string
	format  string
	quiet   bool
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "flagship",
	Short: "CLI tool for inspecting and evaluating bucketed feature flags",
	Long: `Flagship is a command-line tool for bucketed feature flags.

It validates flag configuration, lists definitions, evaluates flags the way
the server does, and edits definitions stored in PostgreSQL.

Examples:
  flagship validate --files configs/flags/default.toml --env staging
  flagship list --format json
  flagship eval example-random -n 10000
  flagship eval example-session --session abc123
  flagship eval example-session --session abc123 --server http://localhost:8080
  flagship set new_checkout --scheme session --enabled 0.1 --source postgres`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "Flag environment section (default from config)")
	rootCmd.PersistentFlags().StringVar(&source, "source", "", "Flag source (file, postgres)")
	rootCmd.PersistentFlags().StringSliceVar(&files, "files", nil, "Flag files, later files win")
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "PostgreSQL DSN for the postgres source")
	rootCmd.PersistentFlags().StringVar(&server, "server", "", "Base URL of a running server; read flags from it instead of a source")
	rootCmd.PersistentFlags().StringVar(&format, "format", "table", "Output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log evaluation failures to stderr")
}

// openSource resolves the effective source configuration and opens it.
func openSource(ctx context.Context) (store.Source, string, error) {
	cfg, err := cli.LoadConfig()
	if err != nil {
		return nil, "", fmt.Errorf("configuration error: %w", err)
	}

	srcCfg := cfg.SourceConfig(cli.Overrides{
		Env:         env,
		Source:      source,
		Files:       files,
		DatabaseDSN: dsn,
	})
	src, err := store.NewSource(ctx, srcCfg)
	if err != nil {
		return nil, "", err
	}
	return src, srcCfg.FlagsEnv, nil
}

// loadRegistry builds a validated registry from the configured source, or
// fetches the current one from --server.
func loadRegistry(ctx context.Context) (*flags.Registry, error) {
	if server != "" {
		return client.NewClient(server).ListFlags(ctx)
	}

	src, _, err := openSource(ctx)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return flags.LoadRegistry(ctx, src)
}

// writer opens the configured source for modification.
func writer(ctx context.Context) (store.Writer, func() error, string, error) {
	src, flagEnv, err := openSource(ctx)
	if err != nil {
		return nil, nil, "", err
	}
	w, ok := src.(store.Writer)
	if !ok {
		src.Close()
		return nil, nil, "", fmt.Errorf("source does not support changes, use --source postgres")
	}
	return w, src.Close, flagEnv, nil
}

func cliLogger() zerolog.Logger {
	if !verbose {
		return zerolog.Nop()
	}
	logger, err := logging.New("debug", logging.FormatConsole, os.Stderr)
	if err != nil {
		return zerolog.Nop()
	}
	return logger
}
