package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/balkashynov/zen/internal/models"
)

// TaskTable is the owner-scoped tasks table
type TaskTable struct {
	db *gorm.DB
}

// NewTaskTable wraps db
func NewTaskTable(db *gorm.DB) *TaskTable {
	return &TaskTable{db: db}
}

// List returns the owner's tasks, newest created first
func (t *TaskTable) List(ctx context.Context, ownerID string) ([]models.Task, error) {
	var tasks []models.Task
	err := t.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

// Get retrieves a task by id for its owner
func (t *TaskTable) Get(ctx context.Context, id, ownerID string) (*models.Task, error) {
	var task models.Task
	err := t.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting task: %w", err)
	}
	return &task, nil
}

// Create stores task, assigning its id
func (t *TaskTable) Create(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.Status == "" {
		task.Status = models.StatusPending
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if err := t.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("creating task: %w", err)
	}
	return nil
}

// Update writes only the fields present in patch
func (t *TaskTable) Update(ctx context.Context, id, ownerID string, patch models.TaskPatch) error {
	cols := patch.Columns()
	if len(cols) == 0 {
		return nil
	}
	res := t.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(cols)
	if res.Error != nil {
		return fmt.Errorf("updating task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes a task owned by ownerID
func (t *TaskTable) Delete(ctx context.Context, id, ownerID string) error {
	res := t.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.Task{})
	if res.Error != nil {
		return fmt.Errorf("deleting task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return nil
}
