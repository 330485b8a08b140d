package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/balkashynov/zen/internal/db"
	"github.com/balkashynov/zen/internal/models"
	"github.com/balkashynov/zen/internal/notify"
	"github.com/balkashynov/zen/internal/store"
	"github.com/balkashynov/zen/internal/testutil"
)

type signedIn struct{ id models.Identity }

func (s signedIn) CurrentUser() (models.Identity, bool) { return s.id, true }

type fixture struct {
	sessions *store.SessionStore
	tasks    *store.TaskStore
	rawS     *db.SessionTable
	rawT     *db.TaskTable
	notes    *notify.Queue
	user     models.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	f := &fixture{
		rawS:  db.NewSessionTable(database),
		rawT:  db.NewTaskTable(database),
		notes: &notify.Queue{},
		user:  testutil.NewTestIdentity("ada"),
	}
	f.sessions = store.NewSessionStore(f.rawS, signedIn{f.user}, store.WithNotifier(f.notes))
	f.tasks = store.NewTaskStore(f.rawT, signedIn{f.user}, store.WithNotifier(f.notes))
	return f
}

// seedSessions stores sessions behind the store's back, then loads them
func (f *fixture) seedSessions(t *testing.T, sessions ...*models.Session) {
	t.Helper()
	ctx := context.Background()
	for _, s := range sessions {
		s.OwnerID = f.user.ID
		require.NoError(t, f.rawS.Create(ctx, s))
	}
	require.NoError(t, f.sessions.Load(ctx))
}

func (f *fixture) seedTasks(t *testing.T, tasks ...*models.Task) {
	t.Helper()
	ctx := context.Background()
	for _, task := range tasks {
		task.OwnerID = f.user.ID
		require.NoError(t, f.rawT.Create(ctx, task))
	}
	require.NoError(t, f.tasks.Load(ctx))
}

// stored reads a session straight from the database
func (f *fixture) stored(t *testing.T, id string) models.Session {
	t.Helper()
	s, err := f.rawS.Get(context.Background(), id, f.user.ID)
	require.NoError(t, err)
	return *s
}

// fakeLease counts renewals
type fakeLease struct {
	mu     sync.Mutex
	renews int
}

func (l *fakeLease) Acquire(context.Context, string, string, time.Duration) error { return nil }
func (l *fakeLease) Release(context.Context, string, string) error                { return nil }

func (l *fakeLease) Renew(context.Context, string, string, time.Duration) error {
	l.mu.Lock()
	l.renews++
	l.mu.Unlock()
	return nil
}

func (l *fakeLease) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.renews
}
