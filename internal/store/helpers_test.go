package store

import (
	"context"
	"sync"
	"testing"

	"github.com/balkashynov/zen/internal/db"
	"github.com/balkashynov/zen/internal/models"
	"github.com/balkashynov/zen/internal/notify"
	"github.com/balkashynov/zen/internal/testutil"
)

type fixedIdentity struct {
	id models.Identity
	ok bool
}

func (f fixedIdentity) CurrentUser() (models.Identity, bool) { return f.id, f.ok }

// flakyTable fails every call while err is set and counts updates
type flakyTable struct {
	SessionTable

	mu      sync.Mutex
	err     error
	updates []models.SessionPatch
}

func (f *flakyTable) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *flakyTable) current() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *flakyTable) List(ctx context.Context, ownerID string) ([]models.Session, error) {
	if err := f.current(); err != nil {
		return nil, err
	}
	return f.SessionTable.List(ctx, ownerID)
}

func (f *flakyTable) Get(ctx context.Context, id, ownerID string) (*models.Session, error) {
	if err := f.current(); err != nil {
		return nil, err
	}
	return f.SessionTable.Get(ctx, id, ownerID)
}

func (f *flakyTable) Create(ctx context.Context, s *models.Session) error {
	if err := f.current(); err != nil {
		return err
	}
	return f.SessionTable.Create(ctx, s)
}

func (f *flakyTable) Update(ctx context.Context, id, ownerID string, patch models.SessionPatch) error {
	f.mu.Lock()
	f.updates = append(f.updates, patch)
	f.mu.Unlock()
	if err := f.current(); err != nil {
		return err
	}
	return f.SessionTable.Update(ctx, id, ownerID, patch)
}

func (f *flakyTable) Delete(ctx context.Context, id, ownerID string) error {
	if err := f.current(); err != nil {
		return err
	}
	return f.SessionTable.Delete(ctx, id, ownerID)
}

type sessionFixture struct {
	store *SessionStore
	table *flakyTable
	raw   *db.SessionTable
	user  models.Identity
	notes *notify.Queue
}

func newSessionFixture(t *testing.T) sessionFixture {
	t.Helper()
	raw := db.NewSessionTable(testutil.NewTestDB(t))
	table := &flakyTable{SessionTable: raw}
	user := testutil.NewTestIdentity("ada")
	notes := &notify.Queue{}
	return sessionFixture{
		store: NewSessionStore(table, fixedIdentity{id: user, ok: true}, WithNotifier(notes)),
		table: table,
		raw:   raw,
		user:  user,
		notes: notes,
	}
}
