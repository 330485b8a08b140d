package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/zen/internal/models"
	"github.com/balkashynov/zen/internal/nav"
	"github.com/balkashynov/zen/internal/teatest"
	"github.com/balkashynov/zen/internal/testutil"
)

func openDashboard(t *testing.T, f *fixture) *teatest.Driver {
	t.Helper()
	m := NewDashboardModel(context.Background(), f.sessions, f.user.Name, f.notes, false)
	d := teatest.New(t, m, teatest.WithSize(120, 60))
	d.DrainInit()
	return d
}

func dashboardOf(d *teatest.Driver) DashboardModel {
	return d.Model.(DashboardModel)
}

func titles(rows []models.Session) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Title)
	}
	return out
}

func seedMixed(t *testing.T, f *fixture) {
	t.Helper()
	f.seedSessions(t,
		testutil.NewTestSession(f.user.ID, "Morning calm"),
		testutil.NewTestSession(f.user.ID, "Evening wind down", testutil.WithStatus(models.StatusCompleted)),
		testutil.NewTestSession(f.user.ID, "Lunch reset", testutil.WithStatus(models.StatusInProgress)),
	)
}

func TestDashboardEmpty(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sessions.Load(context.Background()))

	view := openDashboard(t, f).View()
	assert.Contains(t, view, "Welcome back, ada")
	assert.Contains(t, view, "No data available")
	assert.Contains(t, view, "No meditation sessions found")
}

func TestDashboardShowsMetrics(t *testing.T) {
	f := newFixture(t)
	seedMixed(t, f)

	view := openDashboard(t, f).View()
	assert.Contains(t, view, "Total Sessions [1]")
	assert.Contains(t, view, "Completed Sessions [2]")
	assert.Contains(t, view, "Pending Sessions [3]")
	assert.Contains(t, view, "Session Distribution")
	assert.Contains(t, view, "Morning calm")
	assert.NotContains(t, view, "No data available")
}

func TestDashboardFilterCycle(t *testing.T) {
	f := newFixture(t)
	seedMixed(t, f)
	d := openDashboard(t, f)
	require.Len(t, dashboardOf(d).Rows(), 3)

	d.PressKey('f')
	assert.Equal(t, models.StatusCompleted, f.sessions.Criteria().Status)
	assert.Equal(t, []string{"Evening wind down"}, titles(dashboardOf(d).Rows()))

	d.PressKey('f')
	assert.Equal(t, []string{"Morning calm"}, titles(dashboardOf(d).Rows()))

	d.PressKey('f')
	assert.Equal(t, []string{"Lunch reset"}, titles(dashboardOf(d).Rows()))

	d.PressKey('f')
	assert.Len(t, dashboardOf(d).Rows(), 3)
	assert.Contains(t, d.View(), "All Sessions")
}

func TestDashboardCardShortcuts(t *testing.T) {
	f := newFixture(t)
	seedMixed(t, f)
	d := openDashboard(t, f)

	d.PressKey('3')
	assert.Equal(t, []string{"Morning calm"}, titles(dashboardOf(d).Rows()))
	d.PressKey('2')
	assert.Equal(t, []string{"Evening wind down"}, titles(dashboardOf(d).Rows()))
	d.PressKey('1')
	assert.Len(t, dashboardOf(d).Rows(), 3)
}

func TestDashboardSearch(t *testing.T) {
	f := newFixture(t)
	seedMixed(t, f)
	d := openDashboard(t, f)

	d.PressKey('/')
	d.Type("EVEN")
	// typing alone does not filter
	assert.Len(t, dashboardOf(d).Rows(), 3)

	d.PressEnter()
	assert.Equal(t, []string{"Evening wind down"}, titles(dashboardOf(d).Rows()))
	assert.Equal(t, "EVEN", f.sessions.Criteria().Term)

	// esc clears the search instead of quitting
	d.PressEsc()
	assert.False(t, d.Quitting)
	assert.Len(t, dashboardOf(d).Rows(), 3)

	d.PressEsc()
	assert.True(t, d.Quitting)
	assert.Equal(t, ActionQuit, dashboardOf(d).Outcome().Action)
}

func TestDashboardSearchKeepsStatusFilter(t *testing.T) {
	f := newFixture(t)
	seedMixed(t, f)
	d := openDashboard(t, f)

	d.PressKey('2')
	d.PressKey('/')
	d.Type("morning")
	d.PressEnter()

	assert.Empty(t, dashboardOf(d).Rows())
	assert.Contains(t, d.View(), "No meditation sessions found")
}

func TestDashboardCompletePending(t *testing.T) {
	f := newFixture(t)
	s := testutil.NewTestSession(f.user.ID, "Morning calm")
	f.seedSessions(t, s)
	d := openDashboard(t, f)

	d.PressKey('c')

	assert.Equal(t, models.StatusCompleted, f.stored(t, s.ID).Status)
	assert.Equal(t, models.StatusCompleted, dashboardOf(d).Rows()[0].Status)
	assert.Contains(t, d.View(), "Meditation session updated")
}

func TestDashboardCompleteIgnoresInProgress(t *testing.T) {
	f := newFixture(t)
	s := testutil.NewTestSession(f.user.ID, "Lunch reset", testutil.WithStatus(models.StatusInProgress))
	f.seedSessions(t, s)
	d := openDashboard(t, f)

	d.PressKey('c')
	assert.Equal(t, models.StatusInProgress, f.stored(t, s.ID).Status)
}

func TestDashboardDeleteNeedsConfirmation(t *testing.T) {
	f := newFixture(t)
	s := testutil.NewTestSession(f.user.ID, "Morning calm")
	f.seedSessions(t, s)
	d := openDashboard(t, f)

	d.PressKey('x')
	assert.Contains(t, d.View(), `Delete "Morning calm"?`)
	d.PressKey('n')
	assert.Len(t, dashboardOf(d).Rows(), 1)

	d.PressKey('x')
	d.PressKey('y')
	assert.Empty(t, dashboardOf(d).Rows())
	_, ok := f.sessions.Get(s.ID)
	assert.False(t, ok)
}

func TestDashboardOutcomes(t *testing.T) {
	f := newFixture(t)
	s := testutil.NewTestSession(f.user.ID, "Morning calm")
	f.seedSessions(t, s)

	tests := []struct {
		name string
		key  rune
		want Outcome
	}{
		{"open", 'o', Outcome{Action: ActionNavigate, Route: nav.SessionRoute(s.ID)}},
		{"add", 'a', Outcome{Action: ActionAddSession}},
		{"edit", 'e', Outcome{Action: ActionEditSession, ID: s.ID}},
		{"tasks", 't', Outcome{Action: ActionNavigate, Route: nav.Route{Screen: nav.Tasks}}},
		{"logout", 'L', Outcome{Action: ActionLogout}},
		{"quit", 'q', Outcome{Action: ActionQuit}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := openDashboard(t, f)
			d.PressKey(tt.key)
			assert.True(t, d.Quitting)
			assert.Equal(t, tt.want, dashboardOf(d).Outcome())
		})
	}
}

func TestDashboardEnterOpensSelected(t *testing.T) {
	f := newFixture(t)
	seedMixed(t, f)
	d := openDashboard(t, f)

	d.PressDown()
	d.PressEnter()

	want := dashboardOf(d).Rows()[1].ID
	assert.Equal(t, nav.SessionRoute(want), dashboardOf(d).Outcome().Route)
}

func TestDashboardEmptyListIgnoresRowActions(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sessions.Load(context.Background()))
	d := openDashboard(t, f)

	d.PressEnter()
	d.PressKey('e')
	d.PressKey('x')
	assert.False(t, d.Quitting)
	assert.NotContains(t, d.View(), "cannot be undone")
}
