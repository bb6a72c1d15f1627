package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mramin786/jboss-monitor/internal/monitor"
	"github.com/mramin786/jboss-monitor/internal/store"
)

var statusVerbose bool

// statusCmd prints the merged fleet view for one environment.
var statusCmd = &cobra.Command{
	Use:   "status <environment>",
	Short: "Show the current fleet status",
	Long: `Display every registry host paired with its last stored status record.
Hosts that have never been polled show as unknown.

Examples:
  jboss-monitor status production
  jboss-monitor status non_production --verbose`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := parseEnvironment(args[0])
		if err != nil {
			return err
		}

		a, err := buildApp()
		if err != nil {
			return err
		}

		statuses, err := a.scheduler.GetStatus(env)
		if err != nil {
			return err
		}

		doc := a.store.Load(env)
		cmd.Print(renderStatus(env, statuses, doc.Meta[store.MetaLastUpdated], statusVerbose))
		return nil
	},
}

// statusStyles carries the per-state colors, or passthrough styles when
// stdout is not a terminal.
type statusStyles struct {
	header  lipgloss.Style
	up      lipgloss.Style
	down    lipgloss.Style
	errored lipgloss.Style
	unknown lipgloss.Style
	muted   lipgloss.Style
}

func newStatusStyles(tty bool) statusStyles {
	if !tty {
		plain := lipgloss.NewStyle()
		return statusStyles{plain, plain, plain, plain, plain, plain}
	}
	return statusStyles{
		header:  lipgloss.NewStyle().Bold(true),
		up:      lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		down:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		errored: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		unknown: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func (s statusStyles) forState(state string) lipgloss.Style {
	switch state {
	case monitor.StatusUp:
		return s.up
	case monitor.StatusDown:
		return s.down
	case monitor.StatusError:
		return s.errored
	default:
		return s.unknown
	}
}

func renderStatus(env monitor.Environment, statuses []monitor.HostStatus, lastUpdated string, verbose bool) string {
	styles := newStatusStyles(term.IsTerminal(int(os.Stdout.Fd())))

	if len(statuses) == 0 {
		return fmt.Sprintf("no hosts configured for %s\n", env)
	}

	out := styles.header.Render(fmt.Sprintf("%s (%d hosts)", env, len(statuses))) + "\n"
	if lastUpdated != "" {
		out += styles.muted.Render("last updated "+lastUpdated) + "\n"
	}
	out += "\n"
	out += styles.header.Render(padRight("HOST", 28)+padRight("STATUS", 9)+padRight("DS", 5)+padRight("APPS", 6)+"LAST CHECK") + "\n"

	for _, hs := range statuses {
		label := hs.ID
		if hs.Name != "" {
			label = fmt.Sprintf("%s (%s)", hs.Name, hs.ID)
		}

		line := padRight(label, 28)
		line += padRight(styles.forState(hs.Status.InstanceStatus).Render(hs.Status.InstanceStatus), 9)
		line += padRight(fmt.Sprintf("%d", len(hs.Status.Datasources)), 5)
		line += padRight(fmt.Sprintf("%d", len(hs.Status.Deployments)), 6)
		line += styles.muted.Render(formatLastCheck(hs.Status.LastCheck))
		out += line + "\n"

		if hs.Status.Error != "" {
			out += "  " + styles.down.Render(hs.Status.Error) + "\n"
		}
		if verbose {
			for _, ds := range hs.Status.Datasources {
				out += fmt.Sprintf("  %s %s [%s]\n",
					styles.forState(ds.Status).Render(ds.Status), ds.Name, ds.Type)
			}
			for _, dep := range hs.Status.Deployments {
				out += fmt.Sprintf("  %s %s [%s]\n",
					styles.forState(dep.Status).Render(dep.Status), dep.Name, dep.Type)
			}
		}
	}
	return out
}

func formatLastCheck(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// padRight pads to width, counting visible characters so styled cells line
// up.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	for visible < width {
		s += " "
		visible++
	}
	return s
}

func init() {
	statusCmd.Flags().BoolVarP(&statusVerbose, "verbose", "v", false, "list datasources and deployments per host")
	rootCmd.AddCommand(statusCmd)
}
