package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/zen/internal/app"
	"github.com/balkashynov/zen/internal/auth"
	"github.com/balkashynov/zen/internal/notify"
	"github.com/balkashynov/zen/internal/timer"
)

// Env is what the commands run against. Open is called once per command
// that needs storage; version needs none.
type Env struct {
	Open func(ctx context.Context) (*app.App, error)
	// Notes must be the notifier the opened app was given
	Notes *notify.Queue
	// IsInteractive reports whether forms and screens may be shown
	IsInteractive func() bool
	// Ticker drives headless timers; nil means the wall clock
	Ticker timer.Ticker
	// Now resolves relative dates; nil means time.Now
	Now func() time.Time

	Version string
	Commit  string
	Date    string
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Env) interactive() bool {
	return e.IsInteractive != nil && e.IsInteractive()
}

// NewRootCmd creates the top-level "zen" command
func NewRootCmd(env *Env) *cobra.Command {
	root := &cobra.Command{
		Use:   "zen",
		Short: "Meditation sessions, timer and tasks",
		Long: `zen schedules meditation sessions, times them and keeps a small task list.
Run 'zen' on its own to open the dashboard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return openScreen(cmd, env, "/")
		},
	}

	root.AddCommand(
		newRegisterCmd(env),
		newLoginCmd(env),
		newLogoutCmd(env),
		newWhoamiCmd(env),
		newDashboardCmd(env),
		newOpenCmd(env),
		newSessionCmd(env),
		newTimerCmd(env),
		newTaskCmd(env),
		newMetricsCmd(env),
		newSearchCmd(env),
		newVersionCmd(env),
	)
	root.SetHelpCommand(newHelpCmd())
	return root
}

func newVersionCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "zen %s (commit %s, built %s)\n", env.Version, env.Commit, env.Date)
		},
	}
}

// withApp opens the app, loads the signed-in user's data and runs fn.
// Notifications raised along the way are printed to stderr afterwards.
func withApp(cmd *cobra.Command, env *Env, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := env.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			a.Logger.Warn("app_close_failed", "error", cerr)
		}
	}()
	defer flush(cmd, env.Notes)

	if err := a.Start(ctx); err != nil {
		return err
	}
	return fn(ctx, a)
}

// withUser is withApp for commands that need someone signed in
func withUser(cmd *cobra.Command, env *Env, fn func(ctx context.Context, a *app.App) error) error {
	return withApp(cmd, env, func(ctx context.Context, a *app.App) error {
		if _, err := a.RequireUser(); err != nil {
			return notSignedIn(err)
		}
		return fn(ctx, a)
	})
}

func notSignedIn(err error) error {
	if errors.Is(err, auth.ErrNotAuthenticated) {
		return fmt.Errorf("%w: run 'zen login' first", err)
	}
	return err
}

func flush(cmd *cobra.Command, notes *notify.Queue) {
	if notes == nil {
		return
	}
	p := notify.NewPrinter(cmd.ErrOrStderr())
	for _, n := range notes.Drain() {
		p.Notify(n)
	}
}
