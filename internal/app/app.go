// Package app wires configuration, storage, identity and the stores into one
// context object that commands and screens receive explicitly.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gorm.io/gorm"

	"github.com/balkashynov/zen/internal/auth"
	"github.com/balkashynov/zen/internal/config"
	"github.com/balkashynov/zen/internal/db"
	"github.com/balkashynov/zen/internal/logging"
	"github.com/balkashynov/zen/internal/models"
	"github.com/balkashynov/zen/internal/notify"
	"github.com/balkashynov/zen/internal/store"
	"github.com/balkashynov/zen/internal/timer"
)

// App holds everything a command or screen needs
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	DB       *gorm.DB
	Leases   *db.LeaseTable
	Auth     *auth.Provider
	Sessions *store.SessionStore
	Tasks    *store.TaskStore
	Notifier notify.Notifier

	logCloser io.Closer
}

// Options for Open
type Options struct {
	Config   *config.Config
	Notifier notify.Notifier
	// Logger overrides the file logger built from Config
	Logger *slog.Logger
	// AuthOptions are passed to the identity provider
	AuthOptions []auth.Option
}

// Open builds the app and restores the remembered identity. Stores are
// empty until Start or SignIn.
func Open(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(); err != nil {
			return nil, err
		}
	}

	a := &App{Config: cfg}

	if opts.Logger != nil {
		a.Logger = opts.Logger
	} else {
		logger, closer, err := logging.New(cfg.LogFile, cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		a.Logger, a.logCloser = logger, closer
	}

	database, err := db.Open(cfg.DBPath, db.Options{Debug: logging.ParseLevel(cfg.LogLevel) == slog.LevelDebug})
	if err != nil {
		a.closeLog()
		return nil, err
	}
	a.DB = database

	next := opts.Notifier
	if next == nil {
		next = notify.Discard{}
	}
	a.Notifier = notify.Logged{Next: next, Logger: a.Logger}

	authOpts := append([]auth.Option{auth.WithLogger(a.Logger)}, opts.AuthOptions...)
	a.Auth = auth.NewProvider(db.NewUserTable(database), cfg.IdentityFile(), authOpts...)
	a.Leases = db.NewLeaseTable(database)

	storeOpts := []store.Option{
		store.WithNotifier(a.Notifier),
		store.WithObserver(store.NewLogObserver(a.Logger)),
	}
	a.Sessions = store.NewSessionStore(db.NewSessionTable(database), a.Auth, storeOpts...)
	a.Tasks = store.NewTaskStore(db.NewTaskTable(database), a.Auth, storeOpts...)

	if err := a.Auth.Restore(ctx); err != nil {
		a.Logger.Warn("identity_restore_failed", "error", err)
	}
	return a, nil
}

// Start loads the stores when someone is signed in
func (a *App) Start(ctx context.Context) error {
	if !a.Auth.IsAuthenticated() {
		return nil
	}
	return a.load(ctx)
}

func (a *App) load(ctx context.Context) error {
	if err := a.Sessions.Load(ctx); err != nil {
		return err
	}
	return a.Tasks.Load(ctx)
}

// RequireUser returns the signed-in identity or ErrNotAuthenticated
func (a *App) RequireUser() (models.Identity, error) {
	id, ok := a.Auth.CurrentUser()
	if !ok {
		return models.Identity{}, auth.ErrNotAuthenticated
	}
	return id, nil
}

// SignIn logs in and loads the user's data
func (a *App) SignIn(ctx context.Context, email, password string) (models.Identity, error) {
	id, err := a.Auth.Login(ctx, email, password)
	if err != nil {
		notify.Errorf(a.Notifier, "Login failed. Please check your credentials.")
		return models.Identity{}, err
	}
	notify.Successf(a.Notifier, "Successfully logged in")
	return id, a.load(ctx)
}

// Register creates the account, signs it in and loads its (empty) data
func (a *App) Register(ctx context.Context, name, email, password string) (models.Identity, error) {
	id, err := a.Auth.Register(ctx, name, email, password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			notify.Errorf(a.Notifier, "An account with this email already exists")
		} else {
			notify.Errorf(a.Notifier, "Registration failed")
		}
		return models.Identity{}, err
	}
	notify.Successf(a.Notifier, "Welcome, %s", id.Name)
	return id, a.load(ctx)
}

// SignOut forgets the user and tears the stores down
func (a *App) SignOut() error {
	if err := a.Auth.Logout(); err != nil {
		return err
	}
	a.Sessions.Reset()
	a.Tasks.Reset()
	notify.Infof(a.Notifier, "You have been logged out")
	return nil
}

// NewEngine builds a timer engine for s using the configured cadence
func (a *App) NewEngine(s models.Session) *timer.Engine {
	return timer.New(s, timer.WithCheckpointEvery(a.Config.Timer.CheckpointEvery))
}

// Close releases the database and log file
func (a *App) Close() error {
	var errs []error
	if err := db.Close(a.DB); err != nil {
		errs = append(errs, fmt.Errorf("closing database: %w", err))
	}
	if err := a.closeLog(); err != nil {
		errs = append(errs, fmt.Errorf("closing log: %w", err))
	}
	return errors.Join(errs...)
}

func (a *App) closeLog() error {
	if a.logCloser == nil {
		return nil
	}
	err := a.logCloser.Close()
	a.logCloser = nil
	return err
}
