package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/balkashynov/zen/internal/app"
	"github.com/balkashynov/zen/internal/commands"
	"github.com/balkashynov/zen/internal/notify"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	notes := &notify.Queue{}

	env := &commands.Env{
		Open: func(ctx context.Context) (*app.App, error) {
			return app.Open(ctx, app.Options{Notifier: notes})
		},
		Notes: notes,
		IsInteractive: func() bool {
			return isTerminal(os.Stdin.Fd()) && isTerminal(os.Stdout.Fd())
		},
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	if err := commands.NewRootCmd(env).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
