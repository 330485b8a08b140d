package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/zen/internal/app"
	"github.com/balkashynov/zen/internal/models"
	"github.com/balkashynov/zen/internal/parser"
	"github.com/balkashynov/zen/internal/tui"
)

func newSessionAddCmd(env *Env) *cobra.Command {
	var duration int
	var date, clock, notes string

	cmd := &cobra.Command{
		Use:   "add [session description]",
		Short: "Schedule a meditation session",
		Long: `Schedule a meditation session.

Modes:
  Interactive: zen session add (no arguments, in a terminal)
  Quick: zen session add "Morning sit" --duration 15 --time 07:00
  Smart parsing: zen session add "Evening Relaxation 20m at:21:00 on:tomorrow"

Smart parsing syntax:
  20m, 1h        - Duration
  at:21:00, at:9pm - Time of day
  on:2025-01-10  - Date (yyyy-mm-dd, dd/mm/yyyy, today, tomorrow, X days)
  note:"..."     - Notes

Missing values default to 10 minutes, today, now.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := env.now()
			in := tui.NewSessionInput(now)

			parsed := parser.ParseSession(strings.Join(args, " "), now)
			in.Title = parsed.Title
			if parsed.Duration > 0 {
				in.Duration = strconv.Itoa(parsed.Duration)
			}
			if parsed.Date != "" {
				in.Date = parsed.Date
			}
			if parsed.Time != "" {
				in.Time = parsed.Time
			}
			in.Notes = parsed.Notes

			// Explicit flags win over parsed text
			flags := cmd.Flags()
			if flags.Changed("duration") {
				in.Duration = strconv.Itoa(duration)
			}
			if flags.Changed("date") {
				in.Date = date
			}
			if flags.Changed("time") {
				in.Time = clock
			}
			if flags.Changed("notes") {
				in.Notes = notes
			}

			needsForm := len(args) == 0 || len(parsed.Errors) > 0
			if needsForm {
				if !env.interactive() {
					if len(parsed.Errors) > 0 {
						return errors.New(strings.Join(parsed.Errors, "; "))
					}
					return errors.New("a session title is required")
				}
				if len(parsed.Errors) > 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  Found issues with parsing: %s\n", strings.Join(parsed.Errors, ", "))
				}
				if err := tui.RunSessionForm(&in, false, now); err != nil {
					return ignoreCancel(err)
				}
			}

			ns, err := in.NewSession(now)
			if err != nil {
				return err
			}

			return withUser(cmd, env, func(ctx context.Context, a *app.App) error {
				s, err := a.Sessions.Add(ctx, ns)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Scheduled session %s: %s\n", shortID(s.ID), s.Title)
				fmt.Fprintf(out, "  When: %s at %s\n", s.Date, s.Time)
				fmt.Fprintf(out, "  Duration: %d min\n", s.Duration)
				if s.Notes != "" {
					fmt.Fprintf(out, "  Notes: %s\n", s.Notes)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&duration, "duration", "d", 10, "Duration in minutes (1-180)")
	cmd.Flags().StringVar(&date, "date", "", "Date: yyyy-mm-dd, dd/mm/yyyy, today, tomorrow, X days")
	cmd.Flags().StringVar(&clock, "time", "", "Time of day: HH:MM or 9pm")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Notes")
	return cmd
}

func newTaskAddCmd(env *Env) *cobra.Command {
	var priority, due, description, status string

	cmd := &cobra.Command{
		Use:   "add [task description]",
		Short: "Add a task",
		Long: `Add a task.

Smart parsing: zen task add "Write report +high due:3days"
  +priority  - low, medium, high or 1-3
  due:3days  - Due date (dd/mm/yyyy, yyyy-mm-dd, today, tomorrow, X days, X hours, X weeks)`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := env.now()
			in := tui.NewTaskInput()

			parsed := parser.ParseTask(strings.Join(args, " "), now)
			in.Title = parsed.Title
			if parsed.Priority != "" {
				in.Priority = string(parsed.Priority)
			}
			if parsed.DueDate != nil {
				in.Due = parsed.DueDate.Format("2006-01-02")
			}

			flags := cmd.Flags()
			if flags.Changed("priority") {
				p, err := models.ParsePriority(priority)
				if err != nil {
					return err
				}
				in.Priority = string(p)
			}
			if flags.Changed("due") {
				in.Due = due
			}
			if flags.Changed("description") {
				in.Description = description
			}
			if flags.Changed("status") {
				st, err := models.ParseStatus(status)
				if err != nil {
					return err
				}
				in.Status = string(st)
			}

			if len(args) == 0 || len(parsed.Errors) > 0 {
				if !env.interactive() {
					if len(parsed.Errors) > 0 {
						return errors.New(strings.Join(parsed.Errors, "; "))
					}
					return errors.New("a task title is required")
				}
				if err := tui.RunTaskForm(&in, false, now); err != nil {
					return ignoreCancel(err)
				}
			}

			nt, err := in.NewTask(now)
			if err != nil {
				return err
			}
			// a relative due like 24h keeps its hour
			if parsed.DueDate != nil && !flags.Changed("due") {
				nt.DueDate = parsed.DueDate
			}

			return withUser(cmd, env, func(ctx context.Context, a *app.App) error {
				t, err := a.Tasks.Add(ctx, nt)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Created task %s: %s\n", shortID(t.ID), t.Title)
				fmt.Fprintf(out, "  Priority: %s\n", t.Priority)
				if t.DueDate != nil {
					fmt.Fprintf(out, "  Due: %s\n", parser.FormatDueDate(t.DueDate, now))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&priority, "priority", "", "Priority: low, medium, high")
	cmd.Flags().StringVar(&due, "due", "", "Due date: dd/mm/yyyy, yyyy-mm-dd, X days, X hours, X weeks")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&status, "status", "", "Status: pending, in-progress, completed")
	return cmd
}
