package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"versioning-backend/src/github"
)

// githubCmd groups the GitHub App commands
var githubCmd = &cobra.Command{
	Use:   "github",
	Short: "GitHub App authentication",
}

// githubVerifyCmd checks the configured App credentials against GET /app
var githubVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the GitHub App credentials",
	Long: `Sign an App JWT with the configured private key and call GET /app once.
The App metadata is logged at debug level; use --debug to see it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout, _ := cmd.Flags().GetDuration("timeout")
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if _, err := github.Init(ctx, appConfig.GitHub, github.WithLogger(appLogger)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "GitHub App %d credentials verified\n", appConfig.GitHub.AppID)
		return nil
	},
}

func init() {
	githubVerifyCmd.Flags().Duration("timeout", 30*time.Second, "Request timeout")
	githubCmd.AddCommand(githubVerifyCmd)
}
