package cli

import (
	"github.com/spf13/cobra"

	"github.com/mramin786/jboss-monitor/internal/config"
)

// initCmd writes a starter configuration file.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a jboss-monitor.yaml configuration",
	Long: `Write a starter configuration file with the defaults filled in.

Examples:
  jboss-monitor init
  jboss-monitor init --config /etc/jboss-monitor.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFlag
		if path == "" {
			path = config.ConfigFileName
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		cmd.Printf("wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
