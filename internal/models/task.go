package models

import (
	"fmt"
	"strings"
	"time"
)

// Priority of a task
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority converts "low/medium/high" or "1/2/3" into a Priority
func ParsePriority(input string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "low", "1":
		return PriorityLow, nil
	case "medium", "med", "2":
		return PriorityMedium, nil
	case "high", "3":
		return PriorityHigh, nil
	}
	return "", fmt.Errorf("invalid priority %q. Use: low, medium, high, 1, 2, or 3", input)
}

// Task represents a personal todo item. Tasks share the session status values.
type Task struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OwnerID     string        `gorm:"index;not null;size:36" json:"owner_id"`
	Title       string        `gorm:"not null" json:"title"`
	Description string        `json:"description,omitempty"`
	Status      SessionStatus `gorm:"not null;default:pending" json:"status"`
	Priority    Priority      `gorm:"not null;default:medium" json:"priority"`
	DueDate     *time.Time    `json:"due_date,omitempty"`
}

// TaskPatch is a partial task update; nil fields are left untouched
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *SessionStatus
	Priority    *Priority
	DueDate     *time.Time
	ClearDue    bool
}

// IsEmpty reports whether the patch carries no field
func (p TaskPatch) IsEmpty() bool {
	return len(p.Columns()) == 0
}

// Columns returns the column values to write
func (p TaskPatch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Status != nil {
		cols["status"] = string(*p.Status)
	}
	if p.Priority != nil {
		cols["priority"] = string(*p.Priority)
	}
	if p.ClearDue {
		cols["due_date"] = nil
	} else if p.DueDate != nil {
		cols["due_date"] = *p.DueDate
	}
	return cols
}

// Apply merges the patch into t
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.ClearDue {
		t.DueDate = nil
	} else if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
}
