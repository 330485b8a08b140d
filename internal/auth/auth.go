// Package auth is the local identity provider: registered users, password
// checks, and the signed-in identity remembered between runs.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/balkashynov/zen/internal/db"
	"github.com/balkashynov/zen/internal/models"
	"github.com/balkashynov/zen/internal/validate"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrNotAuthenticated   = errors.New("not logged in")
)

// Users is the account storage the provider needs
type Users interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
}

// Provider answers who is signed in and performs login, register and logout
type Provider struct {
	users        Users
	identityPath string
	cost         int
	logger       *slog.Logger

	mu      sync.RWMutex
	current *models.Identity
}

// Option configures a Provider
type Option func(*Provider)

// WithCost sets the bcrypt cost; tests use bcrypt.MinCost
func WithCost(cost int) Option {
	return func(p *Provider) { p.cost = cost }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) { p.logger = logger }
}

// NewProvider remembers the identity in identityPath. An empty path keeps it in memory only.
func NewProvider(users Users, identityPath string, opts ...Option) *Provider {
	p := &Provider{
		users:        users,
		identityPath: identityPath,
		cost:         bcrypt.DefaultCost,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Restore loads the remembered identity. A stale identity (user no longer
// exists) is forgotten.
func (p *Provider) Restore(ctx context.Context) error {
	if p.identityPath == "" {
		return nil
	}
	data, err := os.ReadFile(p.identityPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading identity: %w", err)
	}

	var id models.Identity
	if err := yaml.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("parsing identity: %w", err)
	}
	if id.ID == "" {
		return nil
	}

	if _, err := p.users.Get(ctx, id.ID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			p.logger.Info("identity_forgotten", "user_id", id.ID)
			return p.forget()
		}
		return fmt.Errorf("checking identity: %w", err)
	}

	p.mu.Lock()
	p.current = &id
	p.mu.Unlock()
	return nil
}

// CurrentUser returns the signed-in identity
func (p *Provider) CurrentUser() (models.Identity, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return models.Identity{}, false
	}
	return *p.current, true
}

// IsAuthenticated reports whether anyone is signed in
func (p *Provider) IsAuthenticated() bool {
	_, ok := p.CurrentUser()
	return ok
}

// Login checks the password and remembers the user
func (p *Provider) Login(ctx context.Context, email, password string) (models.Identity, error) {
	if err := validate.Login(email, password); err != nil {
		return models.Identity{}, err
	}

	user, err := p.users.FindByEmail(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		p.logger.Info("login_failed", "reason", "unknown_email")
		return models.Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Identity{}, fmt.Errorf("looking up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		p.logger.Info("login_failed", "reason", "bad_password", "user_id", user.ID)
		return models.Identity{}, ErrInvalidCredentials
	}

	id := user.Identity()
	if err := p.remember(id); err != nil {
		return models.Identity{}, err
	}
	p.logger.Info("login", "user_id", id.ID)
	return id, nil
}

// Register creates an account and signs it in
func (p *Provider) Register(ctx context.Context, name, email, password string) (models.Identity, error) {
	if err := validate.Registration(name, email, password, password); err != nil {
		return models.Identity{}, err
	}

	_, err := p.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return models.Identity{}, ErrEmailTaken
	case !errors.Is(err, db.ErrNotFound):
		return models.Identity{}, fmt.Errorf("looking up user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return models.Identity{}, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		Email:        strings.TrimSpace(email),
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
	}
	if err := p.users.Create(ctx, user); err != nil {
		return models.Identity{}, fmt.Errorf("creating account: %w", err)
	}

	id := user.Identity()
	if err := p.remember(id); err != nil {
		return models.Identity{}, err
	}
	p.logger.Info("register", "user_id", id.ID)
	return id, nil
}

// Logout forgets the signed-in user
func (p *Provider) Logout() error {
	if id, ok := p.CurrentUser(); ok {
		p.logger.Info("logout", "user_id", id.ID)
	}
	return p.forget()
}

func (p *Provider) remember(id models.Identity) error {
	if p.identityPath != "" {
		data, err := yaml.Marshal(id)
		if err != nil {
			return fmt.Errorf("encoding identity: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(p.identityPath), 0700); err != nil {
			return fmt.Errorf("creating identity directory: %w", err)
		}
		if err := os.WriteFile(p.identityPath, data, 0600); err != nil {
			return fmt.Errorf("writing identity: %w", err)
		}
	}

	p.mu.Lock()
	p.current = &id
	p.mu.Unlock()
	return nil
}

func (p *Provider) forget() error {
	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()

	if p.identityPath == "" {
		return nil
	}
	if err := os.Remove(p.identityPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing identity: %w", err)
	}
	return nil
}
