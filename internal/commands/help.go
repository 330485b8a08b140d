package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

const banner = `
███████╗███████╗███╗   ██╗
╚══███╔╝██╔════╝████╗  ██║
  ███╔╝ █████╗  ██╔██╗ ██║
 ███╔╝  ██╔══╝  ██║╚██╗██║
███████╗███████╗██║ ╚████║
╚══════╝╚══════╝╚═╝  ╚═══╝

zen - meditation sessions, timer and tasks
`

const overview = `
ACCOUNT:

  register                Create an account (--name --email --password, or a form)
  login                   Sign in (--email --password, or a form)
  logout                  Sign out
  whoami                  Show the signed-in user

SCREENS:

  dashboard               Metrics, chart and session list
  open <route>            /dashboard, /tasks, /session/<id>, /login, /register
  timer <id>              Timer for a session
    --no-ui               Plain countdown; Ctrl+C saves and stops

    Dashboard keys:
      ↑/↓ ←/→       Navigate rows and pages
      enter         Open timer
      a / e         Add / edit session
      c             Complete a pending session
      x             Delete (asks first)
      f, 1-3        Filter by status
      /             Search
      t             Tasks
      q             Quit

    Timer keys:
      space         Start / pause / resume
      c             Complete now
      esc           Save and go back

SESSIONS:

  session add <text>      Schedule with smart parsing
    -d, --duration        Minutes (1-180)
    --date                yyyy-mm-dd, dd/mm/yyyy, today, tomorrow, X days
    --time                HH:MM or 9pm
    -n, --notes           Notes

    Smart syntax:
      20m, 1h       Duration
      at:21:00      Time
      on:tomorrow   Date
      note:"..."    Notes

    Example:
      zen session add "Evening Relaxation 20m at:21:00 on:tomorrow"

  session ls              List sessions (--status --search --json)
  session edit <id>       Change fields (--title --duration --date --time --notes --status)
  session rm <id>         Delete a session (-y to skip the question)

TASKS:

  task add <text>         Add a task ("Write report +high due:3days")
  task ls                 List tasks (--status --search --json)
  task edit <id>          Change fields (--due none clears the due date)
  task done <id>          Mark completed
  task undone <id>        Mark pending again
  task rm <id>            Delete a task

REPORTS:

  metrics                 Counts by status and distribution (--json)
    --week                Minutes per day this week
  search <query>          Search sessions and tasks (--json)

Ids can be shortened to any unique prefix, as printed by the ls commands.
`

func newHelpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "help [command]",
		Short: "Show help for zen or a command",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) > 0 {
				if target, _, err := cmd.Root().Find(args); err == nil && target != cmd.Root() {
					_ = target.Help()
					return
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), banner+overview)
		},
	}
}
