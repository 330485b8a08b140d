package models

import (
	"fmt"
	"strings"
	"time"
)

// SessionStatus is the lifecycle state of a meditation session
type SessionStatus string

const (
	StatusPending    SessionStatus = "pending"
	StatusInProgress SessionStatus = "in-progress"
	StatusCompleted  SessionStatus = "completed"
)

// Statuses lists every session status in lifecycle order
var Statuses = []SessionStatus{StatusPending, StatusInProgress, StatusCompleted}

// Valid reports whether s is a known status
func (s SessionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Label returns the display name used in lists and charts
func (s SessionStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	}
	return string(s)
}

// ParseStatus accepts "pending", "in-progress" (or "in_progress", "active") and "completed" (or "done")
func ParseStatus(input string) (SessionStatus, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "pending", "todo":
		return StatusPending, nil
	case "in-progress", "in_progress", "inprogress", "active":
		return StatusInProgress, nil
	case "completed", "complete", "done":
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("invalid status %q. Use: pending, in-progress, completed", input)
}

// Session represents a scheduled meditation session
type Session struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OwnerID  string        `gorm:"index;not null;size:36" json:"owner_id"`
	Title    string        `gorm:"not null" json:"title"`
	Duration int           `gorm:"not null" json:"duration"` // planned minutes
	Date     string        `json:"date"`                     // YYYY-MM-DD
	Time     string        `json:"time"`                     // HH:MM
	Status   SessionStatus `gorm:"not null;default:pending" json:"status"`
	Notes    string        `json:"notes,omitempty"`

	// ElapsedTime is nil until the timer first persists progress
	ElapsedTime *int `json:"elapsed_time,omitempty"`

	// Revision is the highest sequenced write applied to this row
	Revision uint64 `gorm:"not null;default:0" json:"revision"`
}

// TargetSeconds is the planned duration in seconds
func (s Session) TargetSeconds() int {
	return s.Duration * 60
}

// Elapsed returns the persisted elapsed seconds, 0 when never timed
func (s Session) Elapsed() int {
	if s.ElapsedTime == nil {
		return 0
	}
	return *s.ElapsedTime
}
