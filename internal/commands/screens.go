package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/balkashynov/zen/internal/app"
	"github.com/balkashynov/zen/internal/nav"
	"github.com/balkashynov/zen/internal/tui"
)

var errNoTerminal = errors.New("the interactive screens need a terminal; try 'zen session ls' instead")

func newDashboardCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"ui"},
		Short:   "Open the dashboard",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return openScreen(cmd, env, "/dashboard")
		},
	}
}

func newOpenCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "open <route>",
		Short: "Open a screen by route",
		Long: `Open a screen by its route:

  /login, /register    sign in or create an account
  /dashboard           sessions, metrics and chart
  /tasks               task list
  /session/<id>        timer for a session

Protected routes send you to /login when nobody is signed in.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return openScreen(cmd, env, args[0])
		},
	}
}

func openScreen(cmd *cobra.Command, env *Env, path string) error {
	route, err := nav.Parse(path)
	if err != nil {
		return err
	}
	if !env.interactive() {
		return errNoTerminal
	}

	return withApp(cmd, env, func(ctx context.Context, a *app.App) error {
		// session routes accept the short ids the list commands print
		if route.Screen == nav.Timer && a.Auth.IsAuthenticated() {
			if s, err := resolveSession(a.Sessions.Sessions(), route.SessionID); err == nil {
				route.SessionID = s.ID
			}
		}
		return tui.RunApp(ctx, a, env.Notes, route)
	})
}
