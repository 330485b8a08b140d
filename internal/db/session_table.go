package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/balkashynov/zen/internal/models"
)

// SessionTable is the owner-scoped sessions table
type SessionTable struct {
	db *gorm.DB
}

// NewSessionTable wraps db
func NewSessionTable(db *gorm.DB) *SessionTable {
	return &SessionTable{db: db}
}

// List returns every session owned by ownerID, newest created first
func (t *SessionTable) List(ctx context.Context, ownerID string) ([]models.Session, error) {
	var sessions []models.Session
	err := t.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return sessions, nil
}

// Get returns one session; other owners' sessions are reported as not found
func (t *SessionTable) Get(ctx context.Context, id, ownerID string) (*models.Session, error) {
	var session models.Session
	err := t.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}
	return &session, nil
}

// Create stores s, assigning its id. s is updated with the stored record.
func (t *SessionTable) Create(ctx context.Context, s *models.Session) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if err := t.db.WithContext(ctx).Create(s).Error; err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

// Update writes only the fields present in patch. A sequenced patch is
// applied only when its revision is newer than the stored one.
func (t *SessionTable) Update(ctx context.Context, id, ownerID string, patch models.SessionPatch) error {
	cols := patch.Columns()
	if len(cols) == 0 {
		return nil
	}

	q := t.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ? AND owner_id = ?", id, ownerID)
	if patch.Revision > 0 {
		q = q.Where("revision < ?", patch.Revision)
	}

	res := q.Updates(cols)
	if res.Error != nil {
		return fmt.Errorf("updating session: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// Nothing matched: either the row is missing for this owner or the write is stale
	var count int64
	if err := t.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("checking session: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return fmt.Errorf("session %s revision %d: %w", id, patch.Revision, ErrStaleRevision)
}

// Delete removes a session owned by ownerID
func (t *SessionTable) Delete(ctx context.Context, id, ownerID string) error {
	res := t.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.Session{})
	if res.Error != nil {
		return fmt.Errorf("deleting session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return nil
}

// InProgress returns the owner's sessions currently marked in-progress
func (t *SessionTable) InProgress(ctx context.Context, ownerID string) ([]models.Session, error) {
	var sessions []models.Session
	err := t.db.WithContext(ctx).
		Where("owner_id = ? AND status = ?", ownerID, string(models.StatusInProgress)).
		Order("updated_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("listing in-progress sessions: %w", err)
	}
	return sessions, nil
}
