package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/balkashynov/zen/internal/app"
)

// confirmDelete asks before deleting unless yes is set or there is no terminal
func confirmDelete(env *Env, yes bool, what string) (bool, error) {
	if yes || !env.interactive() {
		return true, nil
	}
	ok := false
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Delete %q?", what)).
		Description("This action cannot be undone.").
		Affirmative("Delete").
		Negative("Keep").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return ok, nil
}

func newSessionRemoveCmd(env *Env) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <session-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a session",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd, env, func(ctx context.Context, a *app.App) error {
				s, err := resolveSession(a.Sessions.Sessions(), args[0])
				if err != nil {
					return err
				}
				ok, err := confirmDelete(env, yes, s.Title)
				if err != nil || !ok {
					return err
				}
				if err := a.Sessions.Delete(ctx, s.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s: %s\n", shortID(s.ID), s.Title)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newTaskRemoveCmd(env *Env) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <task-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd, env, func(ctx context.Context, a *app.App) error {
				t, err := resolveTask(a.Tasks.Tasks(), args[0])
				if err != nil {
					return err
				}
				ok, err := confirmDelete(env, yes, t.Title)
				if err != nil || !ok {
					return err
				}
				if err := a.Tasks.Delete(ctx, t.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s: %s\n", shortID(t.ID), t.Title)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
