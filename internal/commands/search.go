package commands

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/zen/internal/app"
	"github.com/balkashynov/zen/internal/models"
)

// Match strength of a query against a title. Body text (notes or
// description) only ever counts as a weak match.
const (
	matchNone = iota
	matchBody
	matchContains
	matchPrefix
	matchExact
)

func matchRank(query, title, body string) int {
	q := strings.ToLower(strings.TrimSpace(query))
	t := strings.ToLower(title)
	switch {
	case q == "":
		return matchNone
	case t == q:
		return matchExact
	case strings.HasPrefix(t, q):
		return matchPrefix
	case strings.Contains(t, q):
		return matchContains
	case strings.Contains(strings.ToLower(body), q):
		return matchBody
	}
	return matchNone
}

type ranked[T any] struct {
	item T
	rank int
}

// rankBy keeps the matches, strongest first, in their original order otherwise
func rankBy[T any](items []T, rank func(T) int) []T {
	var hits []ranked[T]
	for _, it := range items {
		if r := rank(it); r > matchNone {
			hits = append(hits, ranked[T]{it, r})
		}
	}
	slices.SortStableFunc(hits, func(a, b ranked[T]) int { return cmp.Compare(b.rank, a.rank) })

	out := make([]T, len(hits))
	for i, h := range hits {
		out[i] = h.item
	}
	return out
}

func newSearchCmd(env *Env) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search sessions and tasks",
		Long: `Search sessions and tasks. Case insensitive.

Title matches rank first (exact, then prefix, then anywhere), followed by
matches in session notes or task descriptions.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			return withUser(cmd, env, func(ctx context.Context, a *app.App) error {
				sessions := rankBy(a.Sessions.Sessions(), func(s models.Session) int {
					return matchRank(query, s.Title, s.Notes)
				})
				tasks := rankBy(a.Tasks.Tasks(), func(t models.Task) int {
					return matchRank(query, t.Title, t.Description)
				})

				out := cmd.OutOrStdout()
				if jsonOutput {
					return writeJSON(out, struct {
						Query    string           `json:"query"`
						Count    int              `json:"count"`
						Sessions []models.Session `json:"sessions"`
						Tasks    []models.Task    `json:"tasks"`
					}{query, len(sessions) + len(tasks), sessions, tasks})
				}

				fmt.Fprintf(out, "Search results for '%s' (%d found):\n", query, len(sessions)+len(tasks))
				if len(sessions) == 0 && len(tasks) == 0 {
					fmt.Fprintln(out, "Nothing matches your search.")
					return nil
				}
				if len(sessions) > 0 {
					fmt.Fprintln(out, "\nSessions")
					for _, s := range sessions {
						fmt.Fprintf(out, "  %-8s  %-11s  %s %s  %s\n",
							shortID(s.ID), s.Status.Label(), s.Date, s.Time, truncateText(s.Title, 40))
					}
				}
				if len(tasks) > 0 {
					fmt.Fprintln(out, "\nTasks")
					for _, t := range tasks {
						fmt.Fprintf(out, "  %-8s  %-11s  %-6s  %s\n",
							shortID(t.ID), t.Status.Label(), t.Priority, truncateText(t.Title, 40))
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
