package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/balkashynov/zen/internal/app"
	"github.com/balkashynov/zen/internal/metrics"
)

const chartWidth = 30

var dayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func newMetricsCmd(env *Env) *cobra.Command {
	var jsonOutput, week bool

	cmd := &cobra.Command{
		Use:     "metrics",
		Aliases: []string{"stats"},
		Short:   "Show session counts and distribution",
		Long: `Show how many sessions you have by status, with a distribution chart.

With --week, show the minutes meditated on each day of the current calendar
week instead:

  Day     Mon  Tue  Wed  Thu  Fri  Sat  Sun  Total
  Minutes  10    -   20    -    -    -    -     30`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd, env, func(ctx context.Context, a *app.App) error {
				out := cmd.OutOrStdout()
				if week {
					w := metrics.WeeklyMinutes(a.Sessions.Sessions(), env.now())
					if jsonOutput {
						return writeJSON(out, struct {
							Start   string `json:"week_start"`
							Minutes [7]int `json:"minutes"`
							Total   int    `json:"total"`
						}{w.Start.Format("2006-01-02"), w.Minutes, w.Total()})
					}
					renderWeek(out, w)
					return nil
				}

				m := a.Sessions.Metrics()
				chart := a.Sessions.Chart()
				if jsonOutput {
					return writeJSON(out, struct {
						metrics.Metrics
						CompletionRate float64          `json:"completion_rate"`
						Chart          []metrics.Bucket `json:"chart"`
					}{m, m.CompletionRate(), chart})
				}
				renderMetrics(out, m, chart)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&week, "week", false, "Show minutes per day for this week")
	return cmd
}

func renderMetrics(out io.Writer, m metrics.Metrics, chart []metrics.Bucket) {
	fmt.Fprintf(out, "%-20s %d\n", "Total Sessions", m.Total)
	fmt.Fprintf(out, "%-20s %d\n", "Completed Sessions", m.Completed)
	fmt.Fprintf(out, "%-20s %d\n", "Pending Sessions", m.Pending)
	fmt.Fprintf(out, "%-20s %d\n", "In Progress", m.InProgress)
	fmt.Fprintln(out)

	if m.Total == 0 {
		fmt.Fprintln(out, "No data available")
		return
	}

	fmt.Fprintln(out, "Session Distribution")
	for _, b := range chart {
		n := b.Value * chartWidth / m.Total
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(b.Color)).Render(strings.Repeat("█", n))
		pad := strings.Repeat(" ", chartWidth-n)
		fmt.Fprintf(out, "%-12s %s%s %d (%.0f%%)\n", b.Name, bar, pad, b.Value,
			float64(b.Value)/float64(m.Total)*100)
	}
	fmt.Fprintf(out, "\nCompletion rate: %.0f%%\n", m.CompletionRate())
}

func renderWeek(out io.Writer, w metrics.Week) {
	if w.Total() == 0 {
		fmt.Fprintln(out, "No meditation tracked this week.")
		return
	}

	const labelWidth, dayWidth, totalWidth = 8, 5, 7

	fmt.Fprintf(out, "%-*s", labelWidth, "Day")
	for _, d := range dayNames {
		fmt.Fprintf(out, "%*s", dayWidth, d)
	}
	fmt.Fprintf(out, "%*s\n", totalWidth, "Total")

	fmt.Fprintln(out, strings.Repeat("-", labelWidth+7*dayWidth+totalWidth))

	fmt.Fprintf(out, "%-*s", labelWidth, "Minutes")
	for _, m := range w.Minutes {
		cell := "-"
		if m > 0 {
			cell = fmt.Sprint(m)
		}
		fmt.Fprintf(out, "%*s", dayWidth, cell)
	}
	fmt.Fprintf(out, "%*d\n", totalWidth, w.Total())

	fmt.Fprintf(out, "\nWeek of %s to %s\n",
		w.Start.Format("Jan 2"),
		w.Start.AddDate(0, 0, 6).Format("Jan 2, 2006"))
}
