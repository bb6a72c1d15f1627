// Package cli wires the cobra command tree: serve, check, status,
// credentials, init, and version.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// configFlag is the global --config override.
var configFlag string

var rootCmd = &cobra.Command{
	Use:   "jboss-monitor",
	Short: "Fleet monitoring for JBoss/WildFly instances",
	Long: `jboss-monitor polls JBoss/WildFly management controllers across two
environments (production and non_production), tracking server state,
datasources, and deployments per host.

Host lists and credentials live under the storage directory as plain JSON
files; status snapshots are written next to them, one document per
environment.

Examples:
  jboss-monitor serve
  jboss-monitor check production
  jboss-monitor status production`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to config file")
}
