// Package store keeps the signed-in user's sessions and tasks in memory and
// mediates every write to the underlying tables.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/balkashynov/zen/internal/auth"
	"github.com/balkashynov/zen/internal/db"
	"github.com/balkashynov/zen/internal/metrics"
	"github.com/balkashynov/zen/internal/models"
	"github.com/balkashynov/zen/internal/notify"
	"github.com/balkashynov/zen/internal/validate"
)

// SessionTable is the owner-scoped session storage
type SessionTable interface {
	List(ctx context.Context, ownerID string) ([]models.Session, error)
	Get(ctx context.Context, id, ownerID string) (*models.Session, error)
	Create(ctx context.Context, s *models.Session) error
	Update(ctx context.Context, id, ownerID string, patch models.SessionPatch) error
	Delete(ctx context.Context, id, ownerID string) error
}

// Identity reports the signed-in user
type Identity interface {
	CurrentUser() (models.Identity, bool)
}

// NewSession is the user input for a new session
type NewSession struct {
	Title    string
	Duration int
	Date     string
	Time     string
	Notes    string
}

// Criteria is the remembered list filter. Zero values mean no constraint.
type Criteria struct {
	Status models.SessionStatus
	Term   string
}

// Match reports whether s passes the filter
func (c Criteria) Match(s models.Session) bool {
	if c.Status != "" && s.Status != c.Status {
		return false
	}
	if term := strings.ToLower(strings.TrimSpace(c.Term)); term != "" {
		return strings.Contains(strings.ToLower(s.Title), term) ||
			strings.Contains(strings.ToLower(s.Notes), term)
	}
	return true
}

// SessionStore is the authoritative in-memory list of the user's sessions.
// Local state changes only after the table acknowledges a write.
type SessionStore struct {
	table    SessionTable
	identity Identity
	notifier notify.Notifier
	observer Observer

	mu       sync.RWMutex
	sessions []models.Session
	filtered []models.Session
	criteria Criteria
	metrics  metrics.Metrics
	chart    []metrics.Bucket
}

// Option configures a store
type Option func(*options)

type options struct {
	notifier notify.Notifier
	observer Observer
}

// WithNotifier sets where user-facing messages go
func WithNotifier(n notify.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// WithObserver sets the operation observer
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

func buildOptions(opts []Option) options {
	o := options{notifier: notify.Discard{}, observer: NoopObserver{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewSessionStore creates an empty store
func NewSessionStore(table SessionTable, identity Identity, opts ...Option) *SessionStore {
	o := buildOptions(opts)
	s := &SessionStore{
		table:    table,
		identity: identity,
		notifier: o.notifier,
		observer: o.observer,
	}
	s.recompute()
	return s
}

func (s *SessionStore) owner() (string, error) {
	id, ok := s.identity.CurrentUser()
	if !ok {
		return "", auth.ErrNotAuthenticated
	}
	return id.ID, nil
}

// Load replaces the list with the user's sessions, newest created first.
// On failure the list is left empty.
func (s *SessionStore) Load(ctx context.Context) error {
	ownerID, err := s.owner()
	if err != nil {
		s.Reset()
		return err
	}

	var list []models.Session
	err = observe(ctx, s.observer, "sessions.load", map[string]any{"owner_id": ownerID}, func() error {
		var lerr error
		list, lerr = s.table.List(ctx, ownerID)
		return lerr
	})
	if err != nil {
		s.Reset()
		notify.Errorf(s.notifier, "Failed to load sessions")
		return fmt.Errorf("loading sessions: %w", err)
	}

	s.mu.Lock()
	s.sessions = list
	s.recompute()
	s.mu.Unlock()
	return nil
}

// Add creates a pending session and appends the stored record
func (s *SessionStore) Add(ctx context.Context, in NewSession) (models.Session, error) {
	ownerID, err := s.owner()
	if err != nil {
		notify.Errorf(s.notifier, "You must be logged in to add a session")
		return models.Session{}, err
	}
	if err := validate.NewSession(in.Title, in.Duration, in.Date, in.Time); err != nil {
		return models.Session{}, err
	}

	session := models.Session{
		OwnerID:  ownerID,
		Title:    strings.TrimSpace(in.Title),
		Duration: in.Duration,
		Date:     in.Date,
		Time:     in.Time,
		Notes:    in.Notes,
		Status:   models.StatusPending,
	}
	err = observe(ctx, s.observer, "sessions.add", nil, func() error {
		return s.table.Create(ctx, &session)
	})
	if err != nil {
		notify.Errorf(s.notifier, "Failed to add session")
		return models.Session{}, fmt.Errorf("adding session: %w", err)
	}

	s.mu.Lock()
	s.sessions = append(s.sessions, session)
	s.recompute()
	s.mu.Unlock()

	notify.Successf(s.notifier, "Meditation session scheduled")
	return session, nil
}

// Edit writes the fields present in patch and merges them locally
func (s *SessionStore) Edit(ctx context.Context, id string, patch models.SessionPatch) error {
	if err := s.write(ctx, "sessions.edit", id, patch); err != nil {
		notify.Errorf(s.notifier, "Failed to update session")
		return err
	}
	notify.Successf(s.notifier, "Meditation session updated")
	return nil
}

// Checkpoint persists a timer write. One engine's writes arrive in order, so
// a stale revision means another timer saved this session first and the
// write is lost; it is reported like any other failed save.
func (s *SessionStore) Checkpoint(ctx context.Context, id string, patch models.SessionPatch) error {
	err := s.write(ctx, "sessions.checkpoint", id, patch)
	switch {
	case errors.Is(err, db.ErrStaleRevision):
		notify.Errorf(s.notifier, "Progress not saved: this session was updated by another timer")
	case err != nil:
		notify.Errorf(s.notifier, "Failed to save progress")
	}
	return err
}

// Refresh rereads one session from the table and replaces the local copy.
// A session the table no longer has is dropped locally.
func (s *SessionStore) Refresh(ctx context.Context, id string) (models.Session, error) {
	ownerID, err := s.owner()
	if err != nil {
		return models.Session{}, err
	}

	var fresh *models.Session
	err = observe(ctx, s.observer, "sessions.get", map[string]any{"session_id": id}, func() error {
		var gerr error
		fresh, gerr = s.table.Get(ctx, id, ownerID)
		return gerr
	})
	if errors.Is(err, db.ErrNotFound) {
		s.mu.Lock()
		s.sessions = slices.DeleteFunc(s.sessions, func(x models.Session) bool { return x.ID == id })
		s.recompute()
		s.mu.Unlock()
		return models.Session{}, err
	}
	if err != nil {
		notify.Errorf(s.notifier, "Failed to load session")
		return models.Session{}, fmt.Errorf("refreshing session: %w", err)
	}

	s.mu.Lock()
	if i := slices.IndexFunc(s.sessions, func(x models.Session) bool { return x.ID == id }); i >= 0 {
		s.sessions[i] = *fresh
	} else {
		s.sessions = append(s.sessions, *fresh)
	}
	s.recompute()
	s.mu.Unlock()
	return *fresh, nil
}

func (s *SessionStore) write(ctx context.Context, name, id string, patch models.SessionPatch) error {
	ownerID, err := s.owner()
	if err != nil {
		return err
	}
	if patch.IsEmpty() {
		return nil
	}
	if err := validate.SessionPatch(patch); err != nil {
		return err
	}

	fields := map[string]any{"session_id": id, "revision": patch.Revision}
	err = observe(ctx, s.observer, name, fields, func() error {
		return s.table.Update(ctx, id, ownerID, patch)
	})
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sessions {
		if s.sessions[i].ID != id {
			continue
		}
		// Acks can arrive out of order; never let an older one win locally
		if patch.Revision > 0 && patch.Revision <= s.sessions[i].Revision {
			break
		}
		patch.Apply(&s.sessions[i])
		break
	}
	s.recompute()
	return nil
}

// Delete removes the session remotely then locally
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	ownerID, err := s.owner()
	if err != nil {
		notify.Errorf(s.notifier, "You must be logged in to delete a session")
		return err
	}

	err = observe(ctx, s.observer, "sessions.delete", map[string]any{"session_id": id}, func() error {
		return s.table.Delete(ctx, id, ownerID)
	})
	if err != nil {
		notify.Errorf(s.notifier, "Failed to delete session")
		return fmt.Errorf("deleting session: %w", err)
	}

	s.mu.Lock()
	s.sessions = slices.DeleteFunc(s.sessions, func(x models.Session) bool { return x.ID == id })
	s.recompute()
	s.mu.Unlock()

	notify.Successf(s.notifier, "Meditation session deleted")
	return nil
}

// Filter remembers the criteria and returns the matching sessions
func (s *SessionStore) Filter(status models.SessionStatus, term string) []models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria = Criteria{Status: status, Term: term}
	s.refilter()
	return slices.Clone(s.filtered)
}

// Criteria returns the remembered filter
func (s *SessionStore) Criteria() Criteria {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.criteria
}

// Sessions returns a copy of the full list
func (s *SessionStore) Sessions() []models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.sessions)
}

// Filtered returns a copy of the list under the remembered filter
func (s *SessionStore) Filtered() []models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.filtered)
}

// Get returns the local copy of a session
func (s *SessionStore) Get(id string) (models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, x := range s.sessions {
		if x.ID == id {
			return x, true
		}
	}
	return models.Session{}, false
}

// Metrics returns the counters for the full list
func (s *SessionStore) Metrics() metrics.Metrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metrics
}

// Chart returns the chart buckets for the full list
func (s *SessionStore) Chart() []metrics.Bucket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.chart)
}

// Reset clears all state, as on logout
func (s *SessionStore) Reset() {
	s.mu.Lock()
	s.sessions = nil
	s.criteria = Criteria{}
	s.recompute()
	s.mu.Unlock()
}

// recompute refreshes derived state; callers hold mu
func (s *SessionStore) recompute() {
	s.metrics = metrics.Compute(s.sessions)
	s.chart = metrics.Chart(s.sessions)
	s.refilter()
}

func (s *SessionStore) refilter() {
	filtered := make([]models.Session, 0, len(s.sessions))
	for _, x := range s.sessions {
		if s.criteria.Match(x) {
			filtered = append(filtered, x)
		}
	}
	s.filtered = filtered
}
