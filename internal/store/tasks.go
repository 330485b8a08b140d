package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/balkashynov/zen/internal/auth"
	"github.com/balkashynov/zen/internal/models"
	"github.com/balkashynov/zen/internal/notify"
	"github.com/balkashynov/zen/internal/validate"
)

// TaskTable is the owner-scoped task storage
type TaskTable interface {
	List(ctx context.Context, ownerID string) ([]models.Task, error)
	Create(ctx context.Context, t *models.Task) error
	Update(ctx context.Context, id, ownerID string, patch models.TaskPatch) error
	Delete(ctx context.Context, id, ownerID string) error
}

// NewTask is the user input for a new task
type NewTask struct {
	Title       string
	Description string
	Status      models.SessionStatus
	Priority    models.Priority
	DueDate     *time.Time
}

// TaskStore mirrors SessionStore for tasks. New tasks go to the front.
type TaskStore struct {
	table    TaskTable
	identity Identity
	notifier notify.Notifier
	observer Observer

	mu       sync.RWMutex
	tasks    []models.Task
	filtered []models.Task
	criteria Criteria
}

// NewTaskStore creates an empty store
func NewTaskStore(table TaskTable, identity Identity, opts ...Option) *TaskStore {
	o := buildOptions(opts)
	return &TaskStore{
		table:    table,
		identity: identity,
		notifier: o.notifier,
		observer: o.observer,
	}
}

func (s *TaskStore) owner() (string, error) {
	id, ok := s.identity.CurrentUser()
	if !ok {
		return "", auth.ErrNotAuthenticated
	}
	return id.ID, nil
}

// Load replaces the list with the user's tasks
func (s *TaskStore) Load(ctx context.Context) error {
	ownerID, err := s.owner()
	if err != nil {
		s.Reset()
		return err
	}

	var list []models.Task
	err = observe(ctx, s.observer, "tasks.load", map[string]any{"owner_id": ownerID}, func() error {
		var lerr error
		list, lerr = s.table.List(ctx, ownerID)
		return lerr
	})
	if err != nil {
		s.Reset()
		notify.Errorf(s.notifier, "Failed to load tasks")
		return fmt.Errorf("loading tasks: %w", err)
	}

	s.mu.Lock()
	s.tasks = list
	s.refilter()
	s.mu.Unlock()
	return nil
}

// Add creates a task and puts it first
func (s *TaskStore) Add(ctx context.Context, in NewTask) (models.Task, error) {
	ownerID, err := s.owner()
	if err != nil {
		notify.Errorf(s.notifier, "You must be logged in to add a task")
		return models.Task{}, err
	}
	if err := validate.Title(in.Title); err != nil {
		return models.Task{}, err
	}
	if in.Status != "" && !in.Status.Valid() {
		return models.Task{}, fmt.Errorf("invalid status %q", in.Status)
	}

	task := models.Task{
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
	}
	err = observe(ctx, s.observer, "tasks.add", nil, func() error {
		return s.table.Create(ctx, &task)
	})
	if err != nil {
		notify.Errorf(s.notifier, "Failed to add task")
		return models.Task{}, fmt.Errorf("adding task: %w", err)
	}

	s.mu.Lock()
	s.tasks = append([]models.Task{task}, s.tasks...)
	s.refilter()
	s.mu.Unlock()

	notify.Successf(s.notifier, "Task added successfully")
	return task, nil
}

// Edit writes the fields present in patch and merges them locally
func (s *TaskStore) Edit(ctx context.Context, id string, patch models.TaskPatch) error {
	ownerID, err := s.owner()
	if err != nil {
		notify.Errorf(s.notifier, "You must be logged in to update a task")
		return err
	}
	if patch.IsEmpty() {
		return nil
	}
	if err := validate.TaskPatch(patch); err != nil {
		return err
	}

	err = observe(ctx, s.observer, "tasks.edit", map[string]any{"task_id": id}, func() error {
		return s.table.Update(ctx, id, ownerID, patch)
	})
	if err != nil {
		notify.Errorf(s.notifier, "Failed to update task")
		return fmt.Errorf("updating task: %w", err)
	}

	s.mu.Lock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			patch.Apply(&s.tasks[i])
			s.tasks[i].UpdatedAt = time.Now()
			break
		}
	}
	s.refilter()
	s.mu.Unlock()

	notify.Successf(s.notifier, "Task updated successfully")
	return nil
}

// Delete removes the task remotely then locally
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	ownerID, err := s.owner()
	if err != nil {
		notify.Errorf(s.notifier, "You must be logged in to delete a task")
		return err
	}

	err = observe(ctx, s.observer, "tasks.delete", map[string]any{"task_id": id}, func() error {
		return s.table.Delete(ctx, id, ownerID)
	})
	if err != nil {
		notify.Errorf(s.notifier, "Failed to delete task")
		return fmt.Errorf("deleting task: %w", err)
	}

	s.mu.Lock()
	s.tasks = slices.DeleteFunc(s.tasks, func(t models.Task) bool { return t.ID == id })
	s.refilter()
	s.mu.Unlock()

	notify.Successf(s.notifier, "Task deleted successfully")
	return nil
}

// Filter remembers the criteria and returns matching tasks. The term matches
// title or description.
func (s *TaskStore) Filter(status models.SessionStatus, term string) []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria = Criteria{Status: status, Term: term}
	s.refilter()
	return slices.Clone(s.filtered)
}

// Criteria returns the remembered filter
func (s *TaskStore) Criteria() Criteria {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.criteria
}

// Tasks returns a copy of the full list
func (s *TaskStore) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tasks)
}

// Filtered returns a copy of the list under the remembered filter
func (s *TaskStore) Filtered() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.filtered)
}

// Get returns the local copy of a task
func (s *TaskStore) Get(id string) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

// Reset clears all state
func (s *TaskStore) Reset() {
	s.mu.Lock()
	s.tasks = nil
	s.criteria = Criteria{}
	s.refilter()
	s.mu.Unlock()
}

func (s *TaskStore) refilter() {
	term := strings.ToLower(strings.TrimSpace(s.criteria.Term))
	filtered := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if s.criteria.Status != "" && t.Status != s.criteria.Status {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(t.Title), term) &&
			!strings.Contains(strings.ToLower(t.Description), term) {
			continue
		}
		filtered = append(filtered, t)
	}
	s.filtered = filtered
}
