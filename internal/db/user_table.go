package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/balkashynov/zen/internal/models"
)

// UserTable stores registered accounts
type UserTable struct {
	db *gorm.DB
}

// NewUserTable wraps db
func NewUserTable(db *gorm.DB) *UserTable {
	return &UserTable{db: db}
}

// Create stores u, assigning its id
func (t *UserTable) Create(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if err := t.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// FindByEmail looks a user up by case-insensitive email
func (t *UserTable) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := t.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("finding user: %w", err)
	}
	return &user, nil
}

// Get returns the user with id
func (t *UserTable) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := t.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &user, nil
}
