package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mramin786/jboss-monitor/internal/monitor"
)

// checkCmd polls an environment (or one host) once and prints the outcome.
var checkCmd = &cobra.Command{
	Use:   "check <environment> [host-id]",
	Short: "Poll an environment or a single host once",
	Long: `Run an on-demand check outside the periodic loop. Results are merged
into the stored status document, so a long fleet check becomes visible
incrementally.

Examples:
  jboss-monitor check production
  jboss-monitor check non_production 3f2a9c`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := parseEnvironment(args[0])
		if err != nil {
			return err
		}

		a, err := buildApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		if len(args) == 2 {
			record, err := a.scheduler.CheckHost(ctx, env, args[1])
			if err != nil {
				return err
			}
			printRecord(cmd, args[1], record)
			return nil
		}

		records, err := a.scheduler.CheckAll(ctx, env)
		if err != nil {
			return err
		}
		for _, id := range sortedIDs(records) {
			printRecord(cmd, id, records[id])
		}
		cmd.Printf("checked %d hosts in %s\n", len(records), env)
		return nil
	},
}

func printRecord(cmd *cobra.Command, id string, rec monitor.StatusRecord) {
	line := fmt.Sprintf("%s: %s (%d datasources, %d deployments)",
		id, rec.InstanceStatus, len(rec.Datasources), len(rec.Deployments))
	if rec.Changed {
		line += " [changed]"
	}
	if rec.Error != "" {
		line += " " + rec.Error
	}
	cmd.Println(line)
}

func sortedIDs(records map[string]monitor.StatusRecord) []string {
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
