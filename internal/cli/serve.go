package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// serveCmd runs the periodic monitoring loop in the foreground.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the monitoring loop",
	Long: `Continuously poll every configured host in both environments, writing
status snapshots to the storage directory.

The loop paces itself against the configured interval and shuts down
cleanly on SIGINT or SIGTERM.

Examples:
  jboss-monitor serve
  jboss-monitor serve --config /etc/jboss-monitor.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := a.scheduler.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
