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

func TestTaskTable_CRUD(t *testing.T) {
	table := db.NewTaskTable(testutil.NewTestDB(t))
	ctx := context.Background()

	task := &models.Task{OwnerID: "owner-1", Title: "Write journal"}
	require.NoError(t, table.Create(ctx, task))
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, models.StatusPending, task.Status)
	assert.Equal(t, models.PriorityMedium, task.Priority)

	due := time.Date(2025, 1, 12, 23, 59, 0, 0, time.UTC)
	require.NoError(t, table.Update(ctx, task.ID, "owner-1", models.TaskPatch{
		Priority: models.Ptr(models.PriorityHigh),
		DueDate:  &due,
	}))

	got, err := table.Get(ctx, task.ID, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, models.PriorityHigh, got.Priority)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))

	require.NoError(t, table.Update(ctx, task.ID, "owner-1", models.TaskPatch{ClearDue: true}))
	got, err = table.Get(ctx, task.ID, "owner-1")
	require.NoError(t, err)
	assert.Nil(t, got.DueDate)

	_, err = table.Get(ctx, task.ID, "owner-2")
	assert.ErrorIs(t, err, db.ErrNotFound)

	require.NoError(t, table.Delete(ctx, task.ID, "owner-1"))
	list, err := table.List(ctx, "owner-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUserTable_EmailIsCaseInsensitive(t *testing.T) {
	table := db.NewUserTable(testutil.NewTestDB(t))
	ctx := context.Background()

	u := &models.User{Email: " Ada@Example.com ", Name: "Ada", PasswordHash: "x"}
	require.NoError(t, table.Create(ctx, u))
	assert.Equal(t, "ada@example.com", u.Email)

	found, err := table.FindByEmail(ctx, "ADA@example.COM")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = table.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, db.ErrNotFound)

	// Unique index
	assert.Error(t, table.Create(ctx, &models.User{Email: "ada@example.com", PasswordHash: "y"}))
}

func TestLeaseTable_SingleHolder(t *testing.T) {
	now := time.Date(2025, 1, 10, 21, 0, 0, 0, time.UTC)
	leases := db.NewLeaseTable(testutil.NewTestDB(t)).WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, leases.Acquire(ctx, "s1", "view-a", 30*time.Second))
	// Re-acquiring by the same holder is fine
	require.NoError(t, leases.Acquire(ctx, "s1", "view-a", 30*time.Second))

	err := leases.Acquire(ctx, "s1", "view-b", 30*time.Second)
	assert.ErrorIs(t, err, db.ErrLeaseHeld)

	// Other sessions are independent
	require.NoError(t, leases.Acquire(ctx, "s2", "view-b", 30*time.Second))

	require.NoError(t, leases.Release(ctx, "s1", "view-a"))
	require.NoError(t, leases.Acquire(ctx, "s1", "view-b", 30*time.Second))
}

func TestLeaseTable_ExpiredLeaseCanBeTaken(t *testing.T) {
	now := time.Date(2025, 1, 10, 21, 0, 0, 0, time.UTC)
	leases := db.NewLeaseTable(testutil.NewTestDB(t)).WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, leases.Acquire(ctx, "s1", "crashed", 30*time.Second))

	now = now.Add(31 * time.Second)
	require.NoError(t, leases.Acquire(ctx, "s1", "fresh", 30*time.Second))

	// The old holder can no longer renew
	assert.ErrorIs(t, leases.Renew(ctx, "s1", "crashed", 30*time.Second), db.ErrLeaseHeld)
	assert.NoError(t, leases.Renew(ctx, "s1", "fresh", 30*time.Second))
}
