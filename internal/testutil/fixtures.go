package testutil

import (
	"github.com/google/uuid"

	"github.com/balkashynov/zen/internal/models"
)

// Session options
type SessionOption func(*models.Session)

func WithDuration(minutes int) SessionOption {
	return func(s *models.Session) {
		s.Duration = minutes
	}
}

func WithStatus(status models.SessionStatus) SessionOption {
	return func(s *models.Session) {
		s.Status = status
	}
}

func WithElapsed(seconds int) SessionOption {
	return func(s *models.Session) {
		s.ElapsedTime = &seconds
	}
}

func WithNotes(notes string) SessionOption {
	return func(s *models.Session) {
		s.Notes = notes
	}
}

func WithSchedule(date, clock string) SessionOption {
	return func(s *models.Session) {
		s.Date = date
		s.Time = clock
	}
}

func WithRevision(rev uint64) SessionOption {
	return func(s *models.Session) {
		s.Revision = rev
	}
}

// NewTestSession returns an unsaved pending 10 minute session owned by ownerID
func NewTestSession(ownerID, title string, opts ...SessionOption) *models.Session {
	s := &models.Session{
		ID:       uuid.New().String(),
		OwnerID:  ownerID,
		Title:    title,
		Duration: 10,
		Date:     "2025-01-10",
		Time:     "07:00",
		Status:   models.StatusPending,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Task options
type TaskOption func(*models.Task)

func WithTaskStatus(status models.SessionStatus) TaskOption {
	return func(t *models.Task) {
		t.Status = status
	}
}

func WithPriority(p models.Priority) TaskOption {
	return func(t *models.Task) {
		t.Priority = p
	}
}

func WithDescription(d string) TaskOption {
	return func(t *models.Task) {
		t.Description = d
	}
}

// NewTestTask returns an unsaved pending medium-priority task
func NewTestTask(ownerID, title string, opts ...TaskOption) *models.Task {
	t := &models.Task{
		ID:       uuid.New().String(),
		OwnerID:  ownerID,
		Title:    title,
		Status:   models.StatusPending,
		Priority: models.PriorityMedium,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewTestIdentity returns a signed-in identity with a fresh id
func NewTestIdentity(name string) models.Identity {
	return models.Identity{
		ID:    uuid.New().String(),
		Email: name + "@example.com",
		Name:  name,
	}
}
