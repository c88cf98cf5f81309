package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/bucketflags/internal/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Manage the flagship CLI configuration file.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file",
	Long: `Create a default configuration file at ~/.bucketflags/config.yaml

Example:
  flagship config init`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := cli.InitConfig()
		if err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration file created at: %s\n", configPath)
		fmt.Fprintln(out, "\nEdit the file to select the flag source and environment.")
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the effective configuration",
	Long: `Display the configuration after applying environment variables and
command-line flags.

Example:
  flagship config list --env staging`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		eff := cfg.SourceConfig(cli.Overrides{Env: env, Source: source, Files: files, DatabaseDSN: dsn})

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "env:    %s\n", eff.FlagsEnv)
		fmt.Fprintf(out, "source: %s\n", eff.FlagsSource)
		fmt.Fprintf(out, "files:  %v\n", eff.FlagsFiles)
		// Mask the DSN, it usually carries a password
		maskedDSN := ""
		if eff.DatabaseDSN != "" {
			maskedDSN = "***"
			if len(eff.DatabaseDSN) > 11 {
				maskedDSN = eff.DatabaseDSN[:11] + "***"
			}
		}
		fmt.Fprintf(out, "dsn:    %s\n", maskedDSN)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
}
