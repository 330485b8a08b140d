package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/balkashynov/zen/internal/app"
	"github.com/balkashynov/zen/internal/auth"
	"github.com/balkashynov/zen/internal/config"
	"github.com/balkashynov/zen/internal/notify"
)

var testNow = time.Date(2025, 1, 10, 8, 30, 0, 0, time.Local)

// testEnv opens a real app on a temporary home for every command
func testEnv(t *testing.T) *Env {
	t.Helper()
	cfg := config.DefaultConfig(t.TempDir())
	cfg.UI.Animations = false
	notes := &notify.Queue{}

	return &Env{
		Open: func(ctx context.Context) (*app.App, error) {
			return app.Open(ctx, app.Options{
				Config:      cfg,
				Notifier:    notes,
				Logger:      slog.New(slog.DiscardHandler),
				AuthOptions: []auth.Option{auth.WithCost(bcrypt.MinCost)},
			})
		},
		Notes:         notes,
		IsInteractive: func() bool { return false },
		Now:           func() time.Time { return testNow },
		Version:       "1.2.3",
		Commit:        "abc123",
		Date:          "2025-01-01",
	}
}

// executeCmd runs a fresh root command and captures stdout and stderr
func executeCmd(t *testing.T, env *Env, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd(env)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// mustRun fails the test when the command errors and returns stdout
func mustRun(t *testing.T, env *Env, args ...string) string {
	t.Helper()
	out, errOut, err := executeCmd(t, env, args...)
	require.NoError(t, err, "zen %v\nstderr: %s", args, errOut)
	return out
}

// signedInEnv registers ada and returns the env
func signedInEnv(t *testing.T) *Env {
	t.Helper()
	env := testEnv(t)
	mustRun(t, env, "register", "--name", "Ada", "--email", "ada@example.com", "--password", "secret1")
	return env
}

type sessionList struct {
	Count    int `json:"count"`
	Sessions []struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		Duration int    `json:"duration"`
		Date     string `json:"date"`
		Time     string `json:"time"`
		Status   string `json:"status"`
		Notes    string `json:"notes"`
		Elapsed  *int   `json:"elapsed_time"`
	} `json:"sessions"`
}

func listSessions(t *testing.T, env *Env, args ...string) sessionList {
	t.Helper()
	out := mustRun(t, env, append([]string{"session", "ls", "--json"}, args...)...)
	var l sessionList
	require.NoError(t, json.Unmarshal([]byte(out), &l))
	return l
}

func TestVersion(t *testing.T) {
	out := mustRun(t, testEnv(t), "version")
	assert.Equal(t, "zen 1.2.3 (commit abc123, built 2025-01-01)\n", out)
}

func TestHelpShowsOverview(t *testing.T) {
	out := mustRun(t, testEnv(t), "help")
	assert.Contains(t, out, "meditation sessions, timer and tasks")
	assert.Contains(t, out, "session add <text>")
}

func TestCommandsNeedSignIn(t *testing.T) {
	env := testEnv(t)

	_, _, err := executeCmd(t, env, "session", "ls")
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)
	assert.Contains(t, err.Error(), "zen login")

	assert.Equal(t, "Not signed in\n", mustRun(t, env, "whoami"))
}

func TestRegisterLoginLogout(t *testing.T) {
	env := signedInEnv(t)
	assert.Equal(t, "Ada <ada@example.com>\n", mustRun(t, env, "whoami"))

	mustRun(t, env, "logout")
	assert.Equal(t, "Not signed in\n", mustRun(t, env, "whoami"))

	_, errOut, err := executeCmd(t, env, "login", "--email", "ada@example.com", "--password", "wrong-pass")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Contains(t, errOut, "Login failed")

	out := mustRun(t, env, "login", "--email", "ada@example.com", "--password", "secret1")
	assert.Contains(t, out, "Signed in as Ada")
}

func TestRegisterRejectsDuplicateAndBadInput(t *testing.T) {
	env := signedInEnv(t)

	_, errOut, err := executeCmd(t, env, "register", "--name", "Ada", "--email", "ada@example.com", "--password", "secret1")
	assert.ErrorIs(t, err, auth.ErrEmailTaken)
	assert.Contains(t, errOut, "already exists")

	_, _, err = executeCmd(t, env, "register", "--name", "Bo", "--email", "not-an-email", "--password", "123")
	assert.Error(t, err)

	_, _, err = executeCmd(t, testEnv(t), "login")
	assert.ErrorIs(t, err, errNeedsTerminal)
}

func TestSessionAddSmartParsing(t *testing.T) {
	env := signedInEnv(t)

	out := mustRun(t, env, "session", "add", "Evening Relaxation 20m at:21:00 on:tomorrow")
	assert.Contains(t, out, "Scheduled session")
	assert.Contains(t, out, "Evening Relaxation")

	l := listSessions(t, env)
	require.Equal(t, 1, l.Count)
	s := l.Sessions[0]
	assert.Equal(t, "Evening Relaxation", s.Title)
	assert.Equal(t, 20, s.Duration)
	assert.Equal(t, "2025-01-11", s.Date)
	assert.Equal(t, "21:00", s.Time)
	assert.Equal(t, "pending", s.Status)
	assert.Nil(t, s.Elapsed)
}

func TestSessionAddFlagsAndDefaults(t *testing.T) {
	env := signedInEnv(t)

	mustRun(t, env, "session", "add", "Quick sit")
	mustRun(t, env, "session", "add", "Long sit 20m", "--duration", "45", "--notes", "cushion")

	l := listSessions(t, env, "--search", "quick")
	require.Equal(t, 1, l.Count)
	assert.Equal(t, 10, l.Sessions[0].Duration)
	assert.Equal(t, "2025-01-10", l.Sessions[0].Date)
	assert.Equal(t, "08:30", l.Sessions[0].Time)

	l = listSessions(t, env, "--search", "long")
	require.Equal(t, 1, l.Count)
	assert.Equal(t, 45, l.Sessions[0].Duration, "flags win over parsed text")
	assert.Equal(t, "cushion", l.Sessions[0].Notes)
}

func TestSessionAddErrors(t *testing.T) {
	env := signedInEnv(t)

	_, _, err := executeCmd(t, env, "session", "add")
	assert.ErrorContains(t, err, "title is required")

	_, _, err = executeCmd(t, env, "session", "add", "Sit at:25:99")
	assert.ErrorContains(t, err, "invalid time")

	_, _, err = executeCmd(t, env, "session", "add", "Sit", "--duration", "500")
	assert.ErrorContains(t, err, "Duration must be between")

	assert.Zero(t, listSessions(t, env).Count)
}

func TestSessionListTable(t *testing.T) {
	env := signedInEnv(t)
	assert.Contains(t, mustRun(t, env, "session", "ls"), "No sessions found")

	mustRun(t, env, "session", "add", "Morning sit 15m")
	out := mustRun(t, env, "session", "ls")
	assert.Contains(t, out, "STATUS")
	assert.Contains(t, out, "Morning sit")
	assert.Contains(t, out, "Pending")

	_, _, err := executeCmd(t, env, "session", "ls", "--status", "sleeping")
	assert.ErrorContains(t, err, "invalid status")
}

func TestSessionEditAndRemove(t *testing.T) {
	env := signedInEnv(t)
	mustRun(t, env, "session", "add", "Morning sit")
	id := listSessions(t, env).Sessions[0].ID

	out := mustRun(t, env, "session", "edit", id[:6], "--duration", "25", "--status", "completed", "--time", "6:30am")
	assert.Contains(t, out, "Updated session")

	s := listSessions(t, env).Sessions[0]
	assert.Equal(t, 25, s.Duration)
	assert.Equal(t, "completed", s.Status)
	assert.Equal(t, "06:30", s.Time)
	assert.Equal(t, "Morning sit", s.Title)

	assert.Equal(t, 1, listSessions(t, env, "--status", "done").Count)

	_, _, err := executeCmd(t, env, "session", "edit", id)
	assert.ErrorIs(t, err, errNothingToChange)

	mustRun(t, env, "session", "rm", id, "-y")
	assert.Zero(t, listSessions(t, env).Count)

	_, _, err = executeCmd(t, env, "session", "rm", id)
	assert.ErrorContains(t, err, "not found")
}

func TestTaskLifecycle(t *testing.T) {
	env := signedInEnv(t)

	out := mustRun(t, env, "task", "add", "Write report +high due:3days")
	assert.Contains(t, out, "Created task")
	assert.Contains(t, out, "Priority: high")
	assert.Contains(t, out, "(in 3 days)")

	mustRun(t, env, "task", "add", "Buy cushion", "--priority", "low")

	var l struct {
		Count int `json:"count"`
		Tasks []struct {
			ID       string `json:"id"`
			Title    string `json:"title"`
			Status   string `json:"status"`
			Priority string `json:"priority"`
		} `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, env, "task", "ls", "--json")), &l))
	require.Equal(t, 2, l.Count)
	var reportID string
	for _, task := range l.Tasks {
		switch task.Title {
		case "Buy cushion":
			assert.Equal(t, "low", task.Priority)
		case "Write report":
			assert.Equal(t, "high", task.Priority)
			assert.Equal(t, "pending", task.Status)
			reportID = task.ID
		}
	}
	require.NotEmpty(t, reportID)

	assert.Contains(t, mustRun(t, env, "task", "done", reportID), "Marked task")
	assert.Contains(t, mustRun(t, env, "task", "done", reportID), "already Completed")

	out = mustRun(t, env, "task", "ls", "--status", "completed")
	assert.Contains(t, out, "Write report")
	assert.NotContains(t, out, "Buy cushion")

	mustRun(t, env, "task", "undone", reportID)
	mustRun(t, env, "task", "edit", reportID, "--title", "Write summary", "--due", "none")
	out = mustRun(t, env, "task", "ls", "--search", "summary")
	assert.Contains(t, out, "Write summary")
	assert.Contains(t, out, "Pending")

	mustRun(t, env, "task", "rm", reportID, "--yes")
	assert.NotContains(t, mustRun(t, env, "task", "ls"), "Write summary")

	_, _, err := executeCmd(t, env, "task", "add", "Broken +urgent")
	assert.ErrorContains(t, err, "Invalid priority")
}

func TestMetrics(t *testing.T) {
	env := signedInEnv(t)
	assert.Contains(t, mustRun(t, env, "metrics"), "No data available")

	mustRun(t, env, "session", "add", "One")
	mustRun(t, env, "session", "add", "Two")
	mustRun(t, env, "session", "add", "Three")
	id := listSessions(t, env, "--search", "two").Sessions[0].ID
	mustRun(t, env, "session", "edit", id, "--status", "completed")

	var m struct {
		Total          int     `json:"total"`
		Completed      int     `json:"completed"`
		Pending        int     `json:"pending"`
		InProgress     int     `json:"in_progress"`
		CompletionRate float64 `json:"completion_rate"`
		Chart          []struct {
			Name  string `json:"name"`
			Value int    `json:"value"`
		} `json:"chart"`
	}
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, env, "metrics", "--json")), &m))
	assert.Equal(t, 3, m.Total)
	assert.Equal(t, 1, m.Completed)
	assert.Equal(t, 2, m.Pending)
	assert.Equal(t, 0, m.InProgress)
	assert.InDelta(t, 33.3, m.CompletionRate, 0.1)
	require.Len(t, m.Chart, 3)
	assert.Equal(t, "Completed", m.Chart[0].Name)

	out := mustRun(t, env, "metrics")
	assert.Contains(t, out, "Session Distribution")
	assert.Contains(t, out, "Completion rate: 33%")
}

// bufferedTicker delivers n ticks immediately
func bufferedTicker(n int) func(time.Duration) (<-chan time.Time, func()) {
	return func(time.Duration) (<-chan time.Time, func()) {
		ch := make(chan time.Time, n)
		for range n {
			ch <- time.Time{}
		}
		return ch, func() {}
	}
}

func TestHeadlessTimerRunsToCompletion(t *testing.T) {
	env := signedInEnv(t)
	env.Ticker = bufferedTicker(60)
	mustRun(t, env, "session", "add", "Tiny sit 1m on:2025-01-08")
	id := listSessions(t, env).Sessions[0].ID

	out := mustRun(t, env, "timer", id[:8], "--no-ui")
	assert.Contains(t, out, "Tiny sit")
	assert.Contains(t, out, "Session completed: 01:00")

	s := listSessions(t, env).Sessions[0]
	assert.Equal(t, "completed", s.Status)
	require.NotNil(t, s.Elapsed)
	assert.Equal(t, 60, *s.Elapsed)

	// nothing left to run
	out = mustRun(t, env, "timer", id, "--no-ui")
	assert.Contains(t, out, "already completed")

	out = mustRun(t, env, "metrics", "--week")
	assert.Contains(t, out, "Week of Jan 6 to Jan 12, 2025")
	assert.Contains(t, out, "Minutes")
}

func TestSearchRanksTitleMatches(t *testing.T) {
	env := signedInEnv(t)
	mustRun(t, env, "session", "add", "Walk", "--notes", "breath counting")
	mustRun(t, env, "session", "add", "Breath")
	mustRun(t, env, "session", "add", "Breathing space")
	mustRun(t, env, "task", "add", "Read about breath")

	var r struct {
		Count    int `json:"count"`
		Sessions []struct {
			Title string `json:"title"`
		} `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, env, "search", "breath", "--json")), &r))
	assert.Equal(t, 4, r.Count)
	require.Len(t, r.Sessions, 3)
	assert.Equal(t, "Breath", r.Sessions[0].Title)
	assert.Equal(t, "Breathing space", r.Sessions[1].Title)
	assert.Equal(t, "Walk", r.Sessions[2].Title)

	assert.Contains(t, mustRun(t, env, "search", "zazen"), "Nothing matches")
}

func TestScreensNeedTerminal(t *testing.T) {
	env := testEnv(t)

	_, _, err := executeCmd(t, env, "dashboard")
	assert.ErrorIs(t, err, errNoTerminal)

	_, _, err = executeCmd(t, env, "open", "/nowhere")
	assert.ErrorContains(t, err, "not found")
}

func TestResolveID(t *testing.T) {
	ids := []string{"abc123", "abd456", "xyz789"}

	id, err := resolveID("session", "xy", ids)
	require.NoError(t, err)
	assert.Equal(t, "xyz789", id)

	id, err = resolveID("session", "ABC123", ids)
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)

	_, err = resolveID("session", "ab", ids)
	assert.ErrorContains(t, err, "ambiguous")

	_, err = resolveID("task", "q", ids)
	assert.ErrorContains(t, err, `task "q" not found`)

	_, err = resolveID("task", " ", ids)
	assert.Error(t, err)
}
