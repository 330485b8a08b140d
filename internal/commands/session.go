package commands

import (
	"github.com/spf13/cobra"
)

func newSessionCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "session",
		Aliases: []string{"s"},
		Short:   "Manage meditation sessions",
	}
	cmd.AddCommand(
		newSessionAddCmd(env),
		newSessionListCmd(env),
		newSessionEditCmd(env),
		newSessionRemoveCmd(env),
	)
	return cmd
}

func newTaskCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"t"},
		Short:   "Manage tasks",
	}
	cmd.AddCommand(
		newTaskAddCmd(env),
		newTaskListCmd(env),
		newTaskEditCmd(env),
		newTaskRemoveCmd(env),
		newTaskDoneCmd(env),
		newTaskUndoneCmd(env),
	)
	return cmd
}
