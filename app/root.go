// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "iam-console",
	Short: "iam-console is a web-based governance console for identity systems",
	Long: `iam-console is a web-based governance console that manages users,
roles, audit entries and integration-sync status across the Keycloak,
SGR and SIM backend identity systems.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
