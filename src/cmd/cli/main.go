// Package main provides the versioning backend CLI used by CI runners and
// operators to report and inspect build records.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"versioning-backend/src/config"
	"versioning-backend/src/logger"
)

var (
	// Application configuration
	appConfig *config.Config
	// Process logger, writes to stderr so stdout stays machine readable
	appLogger logger.Logger

	configPath string
	debugMode  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "versioning",
	Short: "Versioning backend - CI build record keeping",
	Long: `Tracks the lifecycle of CI image builds (base, hub, editor) for every
combination of base OS, Unity version, repo version and target platform.

Runners report a build as started, then as failed (any number of times) or
published. Records are stored in Postgres when DATABASE_URL is set and in
memory otherwise.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath == "" {
			configPath = os.Getenv("VERSIONING_CONFIG")
		}

		var err error
		appConfig, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		if debugMode {
			appConfig.Log.Level = "debug"
		}

		appLogger = logger.New(os.Stderr, logger.Options{
			Format: appConfig.Log.Format,
			Level:  appConfig.Log.Level,
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (default $VERSIONING_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(buildsCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(githubCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, wrapError(err))
		os.Exit(1)
	}
}
