package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/zen/internal/app"
	"github.com/balkashynov/zen/internal/models"
)

func newTaskDoneCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "done <task-id>",
		Short: "Mark a task as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setTaskStatus(cmd, env, args[0], models.StatusCompleted)
		},
	}
}

func newTaskUndoneCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "undone <task-id>",
		Short: "Mark a completed task as pending again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setTaskStatus(cmd, env, args[0], models.StatusPending)
		},
	}
}

func setTaskStatus(cmd *cobra.Command, env *Env, ref string, status models.SessionStatus) error {
	return withUser(cmd, env, func(ctx context.Context, a *app.App) error {
		t, err := resolveTask(a.Tasks.Tasks(), ref)
		if err != nil {
			return err
		}
		if t.Status == status {
			fmt.Fprintf(cmd.OutOrStdout(), "Task %s is already %s\n", shortID(t.ID), status.Label())
			return nil
		}
		if err := a.Tasks.Edit(ctx, t.ID, models.TaskPatch{Status: &status}); err != nil {
			return err
		}

		icon := "✅"
		if status != models.StatusCompleted {
			icon = "↩️ "
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Marked task %s as %s: %s\n", icon, shortID(t.ID), status.Label(), t.Title)
		return nil
	})
}
