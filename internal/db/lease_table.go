package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Lease marks a session as owned by one open timer until ExpiresAt
type Lease struct {
	SessionID string    `gorm:"primaryKey;size:36"`
	Holder    string    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null"`
}

// TableName keeps leases in their own table
func (Lease) TableName() string {
	return "timer_leases"
}

// LeaseTable grants at most one live timer per session
type LeaseTable struct {
	db  *gorm.DB
	now func() time.Time
}

// NewLeaseTable wraps db
func NewLeaseTable(db *gorm.DB) *LeaseTable {
	return &LeaseTable{db: db, now: time.Now}
}

// WithClock replaces the time source used for expiry
func (t *LeaseTable) WithClock(now func() time.Time) *LeaseTable {
	t.now = now
	return t
}

// Acquire takes the lease for sessionID. It succeeds when the lease is free,
// expired, or already held by holder.
func (t *LeaseTable) Acquire(ctx context.Context, sessionID, holder string, ttl time.Duration) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := t.now()

		var current Lease
		err := tx.Where("session_id = ?", sessionID).First(&current).Error
		switch {
		case err == nil:
			if current.Holder != holder && current.ExpiresAt.After(now) {
				return fmt.Errorf("session %s held until %s: %w",
					sessionID, current.ExpiresAt.Format("15:04:05"), ErrLeaseHeld)
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("reading lease: %w", err)
		}

		lease := Lease{SessionID: sessionID, Holder: holder, ExpiresAt: now.Add(ttl)}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"holder", "expires_at"}),
		}).Create(&lease).Error
		if err != nil {
			return fmt.Errorf("writing lease: %w", err)
		}
		return nil
	})
}

// Renew extends a lease still held by holder
func (t *LeaseTable) Renew(ctx context.Context, sessionID, holder string, ttl time.Duration) error {
	res := t.db.WithContext(ctx).
		Model(&Lease{}).
		Where("session_id = ? AND holder = ?", sessionID, holder).
		Update("expires_at", t.now().Add(ttl))
	if res.Error != nil {
		return fmt.Errorf("renewing lease: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("session %s lease lost: %w", sessionID, ErrLeaseHeld)
	}
	return nil
}

// Release drops the lease if holder still owns it
func (t *LeaseTable) Release(ctx context.Context, sessionID, holder string) error {
	err := t.db.WithContext(ctx).
		Where("session_id = ? AND holder = ?", sessionID, holder).
		Delete(&Lease{}).Error
	if err != nil {
		return fmt.Errorf("releasing lease: %w", err)
	}
	return nil
}
