package testutil

import (
	"testing"

	"gorm.io/gorm"

	"github.com/balkashynov/zen/internal/db"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The database is closed when the test completes.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := db.Open(db.MemoryPath, db.Options{})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close(database)
	})
	return database
}
