package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/bucketflags/internal/cli"
	"github.com/TimurManjosov/bucketflags/internal/client"
	"github.com/TimurManjosov/bucketflags/internal/featureflags"
	"github.com/TimurManjosov/bucketflags/internal/flags"
	"github.com/TimurManjosov/bucketflags/internal/session"
)

var (
	evalBucketFor string
	evalSession   string
	evalTimes     int
)

var evalCmd = &cobra.Command{
	Use:   "eval <flag>",
	Short: "Evaluate a flag",
	Long: `Evaluate a flag N times and report how often it was enabled.

--bucket-for sets an explicit bucketing identifier and --session sets the
session id used by the session scheme. Random flags give a rate close to
their enabled fraction; deterministic inputs give 0 or 1.

Examples:
  flagship eval example-random -n 10000
  flagship eval example-session --session abc123
  flagship eval example-session --bucket-for user-42`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if evalTimes < 1 {
			return fmt.Errorf("-n must be at least 1")
		}

		ctx := context.Background()
		eval, err := evaluator(ctx, cmd, args[0])
		if err != nil {
			return err
		}

		summary := cli.EvalSummary{Flag: args[0], Trials: evalTimes}
		for i := 0; i < evalTimes; i++ {
			enabled, err := eval()
			if err != nil {
				return err
			}
			if enabled {
				summary.Enabled++
			}
		}
		summary.Rate = float64(summary.Enabled) / float64(summary.Trials)

		if quiet {
			return nil
		}
		return cli.PrintEvalSummary(cmd.OutOrStdout(), summary, cli.OutputFormat(format))
	},
}

// evaluator returns a function evaluating name once, either locally or
// against --server.
func evaluator(ctx context.Context, cmd *cobra.Command, name string) (func() (bool, error), error) {
	hasSession := cmd.Flags().Changed("session")
	hasBucketFor := cmd.Flags().Changed("bucket-for")

	if server != "" {
		c := client.NewClient(server)
		var opts client.EvalOptions
		if hasSession {
			opts.SessionID = &evalSession
		}
		if hasBucketFor {
			opts.BucketFor = &evalBucketFor
		}
		return func() (bool, error) { return c.Evaluate(ctx, name, opts) }, nil
	}

	reg, err := loadRegistry(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}
	ff := featureflags.New(flags.NewHolder(reg), featureflags.WithLogger(cliLogger()))

	ctx = session.NewContext(ctx)
	if hasSession {
		if err := session.SetSessionID(ctx, evalSession); err != nil {
			return nil, err
		}
	}
	var bucketFor any
	if hasBucketFor {
		bucketFor = evalBucketFor
	}
	return func() (bool, error) { return ff.IsEnabled(ctx, name, bucketFor), nil }, nil
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringVar(&evalBucketFor, "bucket-for", "", "Explicit bucketing identifier")
	evalCmd.Flags().StringVar(&evalSession, "session", "", "Session id for the session scheme")
	evalCmd.Flags().IntVarP(&evalTimes, "times", "n", 1, "Number of evaluations")
}
