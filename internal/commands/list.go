package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/zen/internal/app"
	"github.com/balkashynov/zen/internal/models"
	"github.com/balkashynov/zen/internal/parser"
)

// parseStatusFlag turns an empty flag into "no constraint"
func parseStatusFlag(s string) (models.SessionStatus, error) {
	if strings.TrimSpace(s) == "" || strings.EqualFold(s, "all") {
		return "", nil
	}
	return models.ParseStatus(s)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func truncateText(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

func newSessionListCmd(env *Env) *cobra.Command {
	var status, search string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List sessions",
		Long:    "List sessions, optionally filtered by status and a search term matched against title and notes.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := parseStatusFlag(status)
			if err != nil {
				return err
			}

			return withUser(cmd, env, func(ctx context.Context, a *app.App) error {
				sessions := a.Sessions.Filter(st, search)
				out := cmd.OutOrStdout()

				if jsonOutput {
					return writeJSON(out, struct {
						Count    int              `json:"count"`
						Sessions []models.Session `json:"sessions"`
					}{len(sessions), sessions})
				}

				if len(sessions) == 0 {
					fmt.Fprintln(out, "No sessions found. Use 'zen session add \"Morning sit 10m\"' to schedule one.")
					return nil
				}

				fmt.Fprintf(out, "%-8s  %-11s  %-10s  %-5s  %-4s  %-7s  %s\n",
					"ID", "STATUS", "DATE", "TIME", "MIN", "ELAPSED", "TITLE")
				fmt.Fprintln(out, strings.Repeat("-", 80))
				for _, s := range sessions {
					fmt.Fprintf(out, "%-8s  %-11s  %-10s  %-5s  %4d  %7s  %s\n",
						shortID(s.ID), s.Status.Label(), s.Date, s.Time, s.Duration,
						formatElapsed(s.Elapsed()), truncateText(s.Title, 30))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status: pending, in-progress, completed")
	cmd.Flags().StringVar(&search, "search", "", "Filter by text in title or notes")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newTaskListCmd(env *Env) *cobra.Command {
	var status, search string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := parseStatusFlag(status)
			if err != nil {
				return err
			}

			return withUser(cmd, env, func(ctx context.Context, a *app.App) error {
				tasks := a.Tasks.Filter(st, search)
				out := cmd.OutOrStdout()

				if jsonOutput {
					return writeJSON(out, struct {
						Count int           `json:"count"`
						Tasks []models.Task `json:"tasks"`
					}{len(tasks), tasks})
				}

				if len(tasks) == 0 {
					fmt.Fprintln(out, "No tasks found. Use 'zen task add \"task description\"' to create your first task.")
					return nil
				}

				now := env.now()
				fmt.Fprintf(out, "%-8s  %-11s  %-8s  %-12s  %s\n", "ID", "STATUS", "PRIORITY", "DUE", "TITLE")
				fmt.Fprintln(out, strings.Repeat("-", 80))
				for _, t := range tasks {
					due := parser.FormatDueDate(t.DueDate, now)
					if due == "" {
						due = "-"
					}
					fmt.Fprintf(out, "%-8s  %-11s  %-8s  %-12s  %s\n",
						shortID(t.ID), t.Status.Label(), t.Priority, due, truncateText(t.Title, 38))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status: pending, in-progress, completed")
	cmd.Flags().StringVar(&search, "search", "", "Filter by text in title or description")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

// formatElapsed renders seconds as mm:ss, or "-" when never timed
func formatElapsed(seconds int) string {
	if seconds <= 0 {
		return "-"
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
