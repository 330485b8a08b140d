package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/zen/internal/app"
	"github.com/balkashynov/zen/internal/tui"
	"github.com/balkashynov/zen/internal/validate"
)

var errNeedsTerminal = errors.New("missing values and no terminal to ask for them")

func newRegisterCmd(env *Env) *cobra.Command {
	var r tui.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Long: `Create an account. Without flags a form asks for name, email and password.

Example:
  zen register --name Ada --email ada@example.com --password secret1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if r.Name == "" && r.Email == "" && r.Password == "" {
				if !env.interactive() {
					return errNeedsTerminal
				}
				var err error
				if r, err = tui.RunRegisterForm(); err != nil {
					return ignoreCancel(err)
				}
			} else {
				// flags give no second chance to mistype
				r.Confirm = r.Password
			}
			if err := validate.Registration(r.Name, r.Email, r.Password, r.Confirm); err != nil {
				return err
			}

			return withApp(cmd, env, func(ctx context.Context, a *app.App) error {
				id, err := a.Register(ctx, r.Name, r.Email, r.Password)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", id.Name, id.Email)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&r.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&r.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&r.Password, "password", "", "Password (at least 6 characters)")
	return cmd
}

func newLoginCmd(env *Env) *cobra.Command {
	var c tui.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.Email == "" || c.Password == "" {
				if !env.interactive() {
					return errNeedsTerminal
				}
				var err error
				if c, err = tui.RunLoginForm(); err != nil {
					return ignoreCancel(err)
				}
			}
			if err := validate.Login(c.Email, c.Password); err != nil {
				return err
			}

			return withApp(cmd, env, func(ctx context.Context, a *app.App) error {
				id, err := a.SignIn(ctx, c.Email, c.Password)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", id.Name, id.Email)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&c.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&c.Password, "password", "", "Password")
	return cmd
}

func newLogoutCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the remembered user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, env, func(ctx context.Context, a *app.App) error {
				if !a.Auth.IsAuthenticated() {
					fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
					return nil
				}
				return a.SignOut()
			})
		},
	}
}

func newWhoamiCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, env, func(ctx context.Context, a *app.App) error {
				id, err := a.RequireUser()
				if err != nil {
					fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", id.Name, id.Email)
				return nil
			})
		},
	}
}

// ignoreCancel treats an aborted form as a normal exit
func ignoreCancel(err error) error {
	if errors.Is(err, tui.ErrCancelled) {
		return nil
	}
	return err
}
