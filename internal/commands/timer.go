package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/balkashynov/zen/internal/app"
	"github.com/balkashynov/zen/internal/db"
	"github.com/balkashynov/zen/internal/models"
	"github.com/balkashynov/zen/internal/nav"
	"github.com/balkashynov/zen/internal/timer"
	"github.com/balkashynov/zen/internal/tui"
)

func newTimerCmd(env *Env) *cobra.Command {
	var noUI bool

	cmd := &cobra.Command{
		Use:     "timer <session-id>",
		Aliases: []string{"start"},
		Short:   "Open the timer for a session",
		Long: `Open the timer for a session. A pending session becomes in progress as soon
as the timer opens. Progress is saved every few seconds and when you leave.

With --no-ui the timer starts right away and runs until the target is reached;
Ctrl+C stops it and saves the elapsed time.

Examples:
  zen timer 3f2a          # interactive timer
  zen timer 3f2a --no-ui  # plain countdown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd, env, func(ctx context.Context, a *app.App) error {
				s, err := resolveSession(a.Sessions.Sessions(), args[0])
				if err != nil {
					return err
				}
				if !noUI && env.interactive() {
					return tui.RunApp(ctx, a, env.Notes, nav.SessionRoute(s.ID))
				}
				return runHeadless(ctx, cmd, env, a, s.ID)
			})
		},
	}

	cmd.Flags().BoolVar(&noUI, "no-ui", false, "Run without the interactive timer")
	return cmd
}

func runHeadless(ctx context.Context, cmd *cobra.Command, env *Env, a *app.App, id string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// resume from what was last saved, which may be newer than the local list
	s, err := a.Sessions.Refresh(ctx, id)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	engine := a.NewEngine(s)

	fmt.Fprintf(out, "⏱️  %s (%d min)\n", s.Title, s.Duration)
	r := timer.NewRunner(engine, a.Sessions, timer.RunnerOptions{
		Lease:    a.Leases,
		LeaseTTL: a.Config.LeaseTTL(),
		Ticker:   env.Ticker,
		Logger:   a.Logger,
		OnTick: func(e *timer.Engine) {
			fmt.Fprintf(out, "\r%s / %s", timer.FormatClock(e.Elapsed()), timer.FormatClock(e.Target()))
		},
	})

	if err := r.Run(ctx); err != nil {
		if errors.Is(err, db.ErrLeaseHeld) {
			return errors.New("this session is already open in another timer")
		}
		return err
	}

	switch {
	case engine.State() == timer.Completed:
		fmt.Fprintf(out, "\n🧘 Session completed: %s\n", timer.FormatClock(engine.Elapsed()))
	case engine.Status() == models.StatusCompleted:
		fmt.Fprintln(out, "Session already completed")
	default:
		fmt.Fprintf(out, "\n⏸️  Stopped at %s, progress saved\n", timer.FormatClock(engine.Elapsed()))
	}
	return nil
}
