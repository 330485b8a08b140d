package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/zen/internal/app"
	"github.com/balkashynov/zen/internal/models"
	"github.com/balkashynov/zen/internal/parser"
	"github.com/balkashynov/zen/internal/tui"
)

var errNothingToChange = errors.New("nothing to change: pass at least one flag")

func newSessionEditCmd(env *Env) *cobra.Command {
	var title, date, clock, notes, status string
	var duration int

	cmd := &cobra.Command{
		Use:   "edit <session-id>",
		Short: "Edit a session",
		Long: `Edit a session. Only the flags given are changed; without flags a form opens
with the current values.

Examples:
  zen session edit 3f2a --duration 20
  zen session edit 3f2a --date tomorrow --time 6:30am`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd, env, func(ctx context.Context, a *app.App) error {
				s, err := resolveSession(a.Sessions.Sessions(), args[0])
				if err != nil {
					return err
				}

				now := env.now()
				flags := cmd.Flags()
				var patch models.SessionPatch

				if flags.NFlag() == 0 {
					if !env.interactive() {
						return errNothingToChange
					}
					in := tui.SessionInputFrom(s)
					if err := tui.RunSessionForm(&in, true, now); err != nil {
						return ignoreCancel(err)
					}
					if patch, err = in.Patch(s, now); err != nil {
						return err
					}
				} else {
					if flags.Changed("title") {
						patch.Title = &title
					}
					if flags.Changed("duration") {
						patch.Duration = &duration
					}
					if flags.Changed("date") {
						d, err := parser.ParseSessionDate(date, now)
						if err != nil {
							return err
						}
						patch.Date = &d
					}
					if flags.Changed("time") {
						c, err := parser.ParseClock(clock)
						if err != nil {
							return err
						}
						patch.Time = &c
					}
					if flags.Changed("notes") {
						patch.Notes = &notes
					}
					if flags.Changed("status") {
						st, err := models.ParseStatus(status)
						if err != nil {
							return err
						}
						patch.Status = &st
					}
				}

				if patch.IsEmpty() {
					fmt.Fprintln(cmd.OutOrStdout(), "No changes")
					return nil
				}
				if err := a.Sessions.Edit(ctx, s.ID, patch); err != nil {
					return err
				}
				updated, _ := a.Sessions.Get(s.ID)
				fmt.Fprintf(cmd.OutOrStdout(), "Updated session %s: %s (%s, %d min, %s at %s)\n",
					shortID(updated.ID), updated.Title, updated.Status.Label(), updated.Duration, updated.Date, updated.Time)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().IntVarP(&duration, "duration", "d", 0, "New duration in minutes")
	cmd.Flags().StringVar(&date, "date", "", "New date")
	cmd.Flags().StringVar(&clock, "time", "", "New time of day")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "New notes (empty to clear)")
	cmd.Flags().StringVarP(&status, "status", "s", "", "New status: pending, in-progress, completed")
	return cmd
}

func newTaskEditCmd(env *Env) *cobra.Command {
	var title, description, status, priority, due string

	cmd := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Edit a task",
		Long: `Edit a task. Only the flags given are changed; without flags a form opens.
Use --due none to clear the due date.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd, env, func(ctx context.Context, a *app.App) error {
				t, err := resolveTask(a.Tasks.Tasks(), args[0])
				if err != nil {
					return err
				}

				now := env.now()
				flags := cmd.Flags()
				var patch models.TaskPatch

				if flags.NFlag() == 0 {
					if !env.interactive() {
						return errNothingToChange
					}
					in := tui.TaskInputFrom(t)
					if err := tui.RunTaskForm(&in, true, now); err != nil {
						return ignoreCancel(err)
					}
					if patch, err = in.Patch(t, now); err != nil {
						return err
					}
				} else {
					if flags.Changed("title") {
						patch.Title = &title
					}
					if flags.Changed("description") {
						patch.Description = &description
					}
					if flags.Changed("status") {
						st, err := models.ParseStatus(status)
						if err != nil {
							return err
						}
						patch.Status = &st
					}
					if flags.Changed("priority") {
						p, err := models.ParsePriority(priority)
						if err != nil {
							return err
						}
						patch.Priority = &p
					}
					if flags.Changed("due") {
						if v := strings.ToLower(strings.TrimSpace(due)); v == "" || v == "none" {
							patch.ClearDue = true
						} else {
							d, err := parser.ParseDueDate(due, now)
							if err != nil {
								return err
							}
							patch.DueDate = d
						}
					}
				}

				if patch.IsEmpty() {
					fmt.Fprintln(cmd.OutOrStdout(), "No changes")
					return nil
				}
				if err := a.Tasks.Edit(ctx, t.ID, patch); err != nil {
					return err
				}
				updated, _ := a.Tasks.Get(t.ID)
				fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s: %s (%s, %s)\n",
					shortID(updated.ID), updated.Title, updated.Status.Label(), updated.Priority)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "New status: pending, in-progress, completed")
	cmd.Flags().StringVar(&priority, "priority", "", "New priority: low, medium, high")
	cmd.Flags().StringVar(&due, "due", "", "New due date, or none")
	return cmd
}
