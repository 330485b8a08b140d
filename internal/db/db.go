package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/balkashynov/zen/internal/models"
)

var (
	// ErrNotFound is returned when a record is absent or owned by someone else
	ErrNotFound = errors.New("not found")
	// ErrStaleRevision is returned when a sequenced write is older than the stored one
	ErrStaleRevision = errors.New("stale revision")
	// ErrLeaseHeld is returned when another timer owns the session
	ErrLeaseHeld = errors.New("session is open in another timer")
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// Options tunes the connection
type Options struct {
	Debug bool // log SQL through gorm's logger
}

// Open connects to the SQLite database at path and runs migrations
func Open(path string, opts Options) (*gorm.DB, error) {
	dsn := path
	if path != MemoryPath {
		// Ensure the directory exists
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create zen directory: %w", err)
		}
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	}

	logMode := logger.Silent // Quiet by default
	if opts.Debug {
		logMode = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get connection pool: %w", err)
	}
	// One writer at a time; an in-memory database only exists on its own connection
	sqlDB.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// runMigrations creates/updates the database schema
func runMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Task{},
		&Lease{},
	)
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
