package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/zen/internal/db"
	"github.com/balkashynov/zen/internal/models"
	"github.com/balkashynov/zen/internal/testutil"
)

func TestSessionTable_CreateAssignsID(t *testing.T) {
	table := db.NewSessionTable(testutil.NewTestDB(t))
	ctx := context.Background()

	s := testutil.NewTestSession("owner-1", "Evening Relaxation")
	s.ID = ""
	require.NoError(t, table.Create(ctx, s))
	assert.NotEmpty(t, s.ID)

	got, err := table.Get(ctx, s.ID, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "Evening Relaxation", got.Title)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Nil(t, got.ElapsedTime)
}

func TestSessionTable_ListIsOwnerScopedNewestFirst(t *testing.T) {
	table := db.NewSessionTable(testutil.NewTestDB(t))
	ctx := context.Background()

	older := testutil.NewTestSession("owner-1", "Morning")
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := testutil.NewTestSession("owner-1", "Evening")
	other := testutil.NewTestSession("owner-2", "Someone else's")
	require.NoError(t, table.Create(ctx, older))
	require.NoError(t, table.Create(ctx, newer))
	require.NoError(t, table.Create(ctx, other))

	list, err := table.List(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Evening", list[0].Title)
	assert.Equal(t, "Morning", list[1].Title)
}

func TestSessionTable_ForeignOwnerIsNotFound(t *testing.T) {
	table := db.NewSessionTable(testutil.NewTestDB(t))
	ctx := context.Background()

	s := testutil.NewTestSession("owner-1", "Private")
	require.NoError(t, table.Create(ctx, s))

	_, err := table.Get(ctx, s.ID, "owner-2")
	assert.ErrorIs(t, err, db.ErrNotFound)

	err = table.Update(ctx, s.ID, "owner-2", models.SessionPatch{Title: models.Ptr("Hijacked")})
	assert.ErrorIs(t, err, db.ErrNotFound)

	err = table.Delete(ctx, s.ID, "owner-2")
	assert.ErrorIs(t, err, db.ErrNotFound)

	got, err := table.Get(ctx, s.ID, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "Private", got.Title)
}

func TestSessionTable_UpdateWritesOnlyPresentFields(t *testing.T) {
	table := db.NewSessionTable(testutil.NewTestDB(t))
	ctx := context.Background()

	s := testutil.NewTestSession("owner-1", "Body Scan", testutil.WithNotes("quiet room"))
	require.NoError(t, table.Create(ctx, s))

	require.NoError(t, table.Update(ctx, s.ID, "owner-1", models.ElapsedPatch(25)))

	got, err := table.Get(ctx, s.ID, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "Body Scan", got.Title)
	assert.Equal(t, "quiet room", got.Notes)
	require.NotNil(t, got.ElapsedTime)
	assert.Equal(t, 25, *got.ElapsedTime)

	// An explicitly empty value is still written
	require.NoError(t, table.Update(ctx, s.ID, "owner-1", models.SessionPatch{Notes: models.Ptr("")}))
	got, err = table.Get(ctx, s.ID, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "", got.Notes)
}

func TestSessionTable_StaleRevisionIsRejected(t *testing.T) {
	table := db.NewSessionTable(testutil.NewTestDB(t))
	ctx := context.Background()

	s := testutil.NewTestSession("owner-1", "Breath")
	require.NoError(t, table.Create(ctx, s))

	later := models.ElapsedPatch(10)
	later.Revision = 2
	require.NoError(t, table.Update(ctx, s.ID, "owner-1", later))

	// The tick-5 checkpoint arrives after the tick-10 one
	earlier := models.ElapsedPatch(5)
	earlier.Revision = 1
	err := table.Update(ctx, s.ID, "owner-1", earlier)
	assert.ErrorIs(t, err, db.ErrStaleRevision)

	got, err := table.Get(ctx, s.ID, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, 10, *got.ElapsedTime)
	assert.Equal(t, uint64(2), got.Revision)

	// User edits are unsequenced and always apply
	require.NoError(t, table.Update(ctx, s.ID, "owner-1", models.SessionPatch{Title: models.Ptr("Deep Breath")}))
	got, err = table.Get(ctx, s.ID, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "Deep Breath", got.Title)
	assert.Equal(t, uint64(2), got.Revision)
}

func TestSessionTable_EmptyPatchIsNoop(t *testing.T) {
	table := db.NewSessionTable(testutil.NewTestDB(t))
	assert.NoError(t, table.Update(context.Background(), "missing", "owner-1", models.SessionPatch{}))
}

func TestSessionTable_Delete(t *testing.T) {
	table := db.NewSessionTable(testutil.NewTestDB(t))
	ctx := context.Background()

	s := testutil.NewTestSession("owner-1", "Gone")
	require.NoError(t, table.Create(ctx, s))
	require.NoError(t, table.Delete(ctx, s.ID, "owner-1"))

	_, err := table.Get(ctx, s.ID, "owner-1")
	assert.ErrorIs(t, err, db.ErrNotFound)
	assert.ErrorIs(t, table.Delete(ctx, s.ID, "owner-1"), db.ErrNotFound)
}

func TestSessionTable_InProgress(t *testing.T) {
	table := db.NewSessionTable(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, table.Create(ctx, testutil.NewTestSession("owner-1", "A")))
	require.NoError(t, table.Create(ctx, testutil.NewTestSession("owner-1", "B",
		testutil.WithStatus(models.StatusInProgress))))

	active, err := table.InProgress(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "B", active[0].Title)
}
