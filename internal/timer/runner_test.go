package timer

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/zen/internal/db"
	"github.com/balkashynov/zen/internal/models"
	"github.com/balkashynov/zen/internal/notify"
	"github.com/balkashynov/zen/internal/store"
	"github.com/balkashynov/zen/internal/testutil"
)

type recordingPersister struct {
	mu     sync.Mutex
	err    error
	writes []models.SessionPatch
}

func (p *recordingPersister) Checkpoint(_ context.Context, _ string, patch models.SessionPatch) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writes = append(p.writes, patch)
	return p.err
}

func (p *recordingPersister) snapshot() []models.SessionPatch {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := append([]models.SessionPatch(nil), p.writes...)
	// Writes are dispatched concurrently; revision gives their issue order
	sort.Slice(out, func(i, j int) bool { return out[i].Revision < out[j].Revision })
	return out
}

func manualTicker(ch chan time.Time) Ticker {
	return func(time.Duration) (<-chan time.Time, func()) {
		return ch, func() {}
	}
}

func TestRunner_RunsToCompletion(t *testing.T) {
	s := testutil.NewTestSession("u", "Short", testutil.WithDuration(1), testutil.WithElapsed(55))
	persist := &recordingPersister{}
	ticks := make(chan time.Time)
	r := NewRunner(New(*s), persist, RunnerOptions{Ticker: manualTicker(ticks)})

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()

	for i := 0; i < 5; i++ {
		ticks <- time.Now()
	}
	require.NoError(t, <-done)

	writes := persist.snapshot()
	// enter, checkpoint at 60 is the completion write
	require.Len(t, writes, 2)
	assert.Equal(t, models.StatusInProgress, *writes[0].Status)
	assert.Equal(t, models.StatusCompleted, *writes[1].Status)
	assert.Equal(t, 60, *writes[1].ElapsedTime)
}

func TestRunner_CancelSavesElapsed(t *testing.T) {
	s := testutil.NewTestSession("u", "Leave early", testutil.WithStatus(models.StatusInProgress))
	persist := &recordingPersister{}
	ticks := make(chan time.Time)
	r := NewRunner(New(*s), persist, RunnerOptions{Ticker: manualTicker(ticks)})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	for i := 0; i < 3; i++ {
		ticks <- time.Now()
	}
	cancel()
	require.NoError(t, <-done)

	writes := persist.snapshot()
	require.Len(t, writes, 1)
	assert.Nil(t, writes[0].Status)
	assert.Equal(t, 3, *writes[0].ElapsedTime)
}

func TestRunner_WriteFailureKeepsTicking(t *testing.T) {
	s := testutil.NewTestSession("u", "Flaky", testutil.WithStatus(models.StatusInProgress))
	persist := &recordingPersister{err: errors.New("offline")}
	ticks := make(chan time.Time)

	var mu sync.Mutex
	var failed int
	r := NewRunner(New(*s), persist, RunnerOptions{
		Ticker: manualTicker(ticks),
		OnWrite: func(_ Write, err error) {
			if err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
			}
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	for i := 0; i < 7; i++ {
		ticks <- time.Now()
	}
	cancel()
	require.NoError(t, <-done)

	writes := persist.snapshot()
	require.Len(t, writes, 2)
	assert.Equal(t, 5, *writes[0].ElapsedTime)
	assert.Equal(t, 7, *writes[1].ElapsedTime)
	mu.Lock()
	assert.Equal(t, 2, failed)
	mu.Unlock()
}

func TestRunner_LeaseHeldElsewhere(t *testing.T) {
	leases := db.NewLeaseTable(testutil.NewTestDB(t))
	s := testutil.NewTestSession("u", "Busy")
	ctx := context.Background()
	require.NoError(t, leases.Acquire(ctx, s.ID, "other-view", time.Minute))

	persist := &recordingPersister{}
	r := NewRunner(New(*s), persist, RunnerOptions{
		Lease:  leases,
		Holder: "this-view",
		Ticker: manualTicker(make(chan time.Time)),
	})

	err := r.Run(ctx)
	assert.ErrorIs(t, err, db.ErrLeaseHeld)
	assert.Empty(t, persist.snapshot(), "nothing is written without the lease")
}

func TestRunner_ReleasesLeaseOnExit(t *testing.T) {
	leases := db.NewLeaseTable(testutil.NewTestDB(t))
	s := testutil.NewTestSession("u", "Released", testutil.WithDuration(1), testutil.WithElapsed(59))
	ticks := make(chan time.Time)
	r := NewRunner(New(*s), &recordingPersister{}, RunnerOptions{
		Lease:  leases,
		Holder: "view-a",
		Ticker: manualTicker(ticks),
	})

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()
	ticks <- time.Now()
	require.NoError(t, <-done)

	assert.NoError(t, leases.Acquire(context.Background(), s.ID, "view-b", time.Minute))
}

func TestRunner_CompletedSessionDoesNotStart(t *testing.T) {
	s := testutil.NewTestSession("u", "Finished", testutil.WithStatus(models.StatusCompleted), testutil.WithElapsed(600))
	persist := &recordingPersister{}
	r := NewRunner(New(*s), persist, RunnerOptions{Ticker: manualTicker(make(chan time.Time))})

	require.NoError(t, r.Run(context.Background()))
	assert.Empty(t, persist.snapshot())
}

// blockingPersister holds the first write until release is closed
type blockingPersister struct {
	recordingPersister
	release chan struct{}
	first   sync.Once
}

func (p *blockingPersister) Checkpoint(ctx context.Context, id string, patch models.SessionPatch) error {
	p.first.Do(func() { <-p.release })
	return p.recordingPersister.Checkpoint(ctx, id, patch)
}

func TestSequencer_WritesLandInQueueOrder(t *testing.T) {
	persist := &blockingPersister{release: make(chan struct{})}
	seq := NewSequencer(persist)
	ctx := context.Background()

	enter := models.StatusPatch(models.StatusInProgress)
	enter.Revision = 1
	leave := models.ElapsedPatch(3)
	leave.Revision = 2

	saveEnter := seq.Queue(ctx, Write{SessionID: "s", Patch: enter, Reason: ReasonEnter})
	saveLeave := seq.Queue(ctx, Write{SessionID: "s", Patch: leave, Reason: ReasonLeave})

	// the later write starts first and has to wait for the earlier one
	leaveDone := make(chan error, 1)
	go func() { leaveDone <- saveLeave() }()
	enterDone := make(chan error, 1)
	go func() { enterDone <- saveEnter() }()

	select {
	case <-leaveDone:
		t.Fatal("leave saved before enter")
	case <-time.After(20 * time.Millisecond):
	}
	close(persist.release)
	require.NoError(t, <-enterDone)
	require.NoError(t, <-leaveDone)

	persist.mu.Lock()
	defer persist.mu.Unlock()
	require.Len(t, persist.writes, 2)
	assert.Equal(t, uint64(1), persist.writes[0].Revision)
	assert.Equal(t, uint64(2), persist.writes[1].Revision)
}

type signedIn struct{ id models.Identity }

func (s signedIn) CurrentUser() (models.Identity, bool) { return s.id, true }

// storeFixture is two session stores over one database, as when the
// dashboard and a headless timer run side by side
type storeFixture struct {
	table     *db.SessionTable
	user      models.Identity
	dashboard *store.SessionStore
	headless  *store.SessionStore
	notes     *notify.Queue
}

func newStoreFixture(t *testing.T) storeFixture {
	t.Helper()
	table := db.NewSessionTable(testutil.NewTestDB(t))
	user := testutil.NewTestIdentity("ada")
	notes := &notify.Queue{}
	return storeFixture{
		table:     table,
		user:      user,
		dashboard: store.NewSessionStore(table, signedIn{user}, store.WithNotifier(notes)),
		headless:  store.NewSessionStore(table, signedIn{user}),
		notes:     notes,
	}
}

func (f storeFixture) seed(t *testing.T, opts ...testutil.SessionOption) models.Session {
	t.Helper()
	s := testutil.NewTestSession(f.user.ID, "Evening Relaxation", opts...)
	require.NoError(t, f.table.Create(context.Background(), s))
	require.NoError(t, f.dashboard.Load(context.Background()))
	require.NoError(t, f.headless.Load(context.Background()))
	return *s
}

// runFor ticks a runner n times and then leaves
func runFor(t *testing.T, r *Runner, n int) {
	t.Helper()
	ticks := make(chan time.Time)
	r.opts.Ticker = manualTicker(ticks)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	for i := 0; i < n; i++ {
		ticks <- time.Now()
	}
	cancel()
	require.NoError(t, <-done)
}

func TestRunner_LeavingAtOnceStillCommitsInProgress(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		s := f.seed(t)
		left, cancel := context.WithCancel(ctx)
		cancel()

		fresh, err := f.headless.Refresh(ctx, s.ID)
		require.NoError(t, err)
		r := NewRunner(New(fresh), f.headless, RunnerOptions{Ticker: manualTicker(make(chan time.Time))})
		require.NoError(t, r.Run(left))

		stored, err := f.table.Get(ctx, s.ID, f.user.ID)
		require.NoError(t, err)
		require.Equal(t, models.StatusInProgress, stored.Status, "run %d", i)
		require.NotNil(t, stored.ElapsedTime)
		assert.Equal(t, uint64(2), stored.Revision)
	}
}

func TestRunner_ReopenResumesAfterAnotherTimer(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	s := f.seed(t)

	// headless timer runs a minute while the dashboard's list stays as loaded
	first, err := f.headless.Refresh(ctx, s.ID)
	require.NoError(t, err)
	runFor(t, NewRunner(New(first), f.headless, RunnerOptions{}), 60)

	stale, _ := f.dashboard.Get(s.ID)
	assert.Zero(t, stale.Elapsed())

	reopened, err := f.dashboard.Refresh(ctx, s.ID)
	require.NoError(t, err)
	engine := New(reopened)
	assert.Equal(t, 60, engine.Elapsed())

	var mu sync.Mutex
	var failed []error
	runFor(t, NewRunner(engine, f.dashboard, RunnerOptions{
		OnWrite: func(_ Write, err error) {
			if err != nil {
				mu.Lock()
				failed = append(failed, err)
				mu.Unlock()
			}
		},
	}), 30)

	assert.Empty(t, failed)
	assert.Empty(t, f.notes.Drain())
	stored, err := f.table.Get(ctx, s.ID, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, stored.Elapsed())
	assert.Equal(t, models.StatusInProgress, stored.Status)
}

func TestRunner_LostWritesAreReported(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	s := f.seed(t, testutil.WithStatus(models.StatusInProgress))

	first, err := f.headless.Refresh(ctx, s.ID)
	require.NoError(t, err)
	runFor(t, NewRunner(New(first), f.headless, RunnerOptions{}), 60)

	// an engine seeded from the out of date list cannot overwrite newer progress
	stale, _ := f.dashboard.Get(s.ID)
	var mu sync.Mutex
	var failed []error
	runFor(t, NewRunner(New(stale), f.dashboard, RunnerOptions{
		OnWrite: func(_ Write, err error) {
			mu.Lock()
			failed = append(failed, err)
			mu.Unlock()
		},
	}), 5)

	require.Len(t, failed, 2)
	for _, err := range failed {
		assert.ErrorIs(t, err, db.ErrStaleRevision)
	}
	notes := f.notes.Drain()
	require.NotEmpty(t, notes)
	assert.Equal(t, notify.Error, notes[0].Level)

	stored, err := f.table.Get(ctx, s.ID, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, stored.Elapsed())
}
