package tui

import (
	"context"
	"errors"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/balkashynov/zen/internal/app"
	"github.com/balkashynov/zen/internal/db"
	"github.com/balkashynov/zen/internal/nav"
	"github.com/balkashynov/zen/internal/notify"
)

// errDone ends the screen loop without an error
var errDone = errors.New("done")

// RunApp shows screens starting at route until the user quits. notes must
// be the queue behind a.Notifier so screens can show store messages.
func RunApp(ctx context.Context, a *app.App, notes *notify.Queue, route nav.Route) error {
	for {
		route = nav.Resolve(route, a.Auth.IsAuthenticated())
		a.Logger.Debug("screen", "path", route.Path())

		var err error
		switch route.Screen {
		case nav.Login:
			route, err = runLogin(ctx, a, notes)
		case nav.Register:
			route, err = runRegister(ctx, a, notes)
		case nav.Dashboard:
			route, err = runDashboard(ctx, a, notes)
		case nav.Tasks:
			route, err = runTasks(ctx, a, notes)
		case nav.Timer:
			route, err = RunTimer(ctx, a, notes, route.SessionID)
		default:
			route = nav.Route{Screen: nav.Dashboard}
		}

		switch {
		case errors.Is(err, errDone), errors.Is(err, ErrCancelled):
			return nil
		case err != nil:
			return err
		}
	}
}

// flush prints anything the screens did not get to show
func flush(notes *notify.Queue) {
	p := notify.NewPrinter(os.Stderr)
	for _, n := range notes.Drain() {
		p.Notify(n)
	}
}

func runLogin(ctx context.Context, a *app.App, notes *notify.Queue) (nav.Route, error) {
	c, err := RunLoginForm()
	if err != nil {
		return nav.Route{}, err
	}
	if _, err := a.SignIn(ctx, c.Email, c.Password); err != nil {
		flush(notes)
		return nav.Route{Screen: nav.Login}, nil
	}
	return nav.Route{Screen: nav.Dashboard}, nil
}

func runRegister(ctx context.Context, a *app.App, notes *notify.Queue) (nav.Route, error) {
	r, err := RunRegisterForm()
	if err != nil {
		return nav.Route{}, err
	}
	if _, err := a.Register(ctx, r.Name, r.Email, r.Password); err != nil {
		flush(notes)
		return nav.Route{Screen: nav.Register}, nil
	}
	return nav.Route{Screen: nav.Dashboard}, nil
}

func runDashboard(ctx context.Context, a *app.App, notes *notify.Queue) (nav.Route, error) {
	here := nav.Route{Screen: nav.Dashboard}
	user, err := a.RequireUser()
	if err != nil {
		return nav.Route{Screen: nav.Login}, nil
	}

	m := NewDashboardModel(ctx, a.Sessions, user.Name, notes, a.Config.UI.Animations)
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return here, err
	}
	out := final.(DashboardModel).Outcome()

	switch out.Action {
	case ActionNavigate:
		return out.Route, nil
	case ActionAddSession:
		return here, addSession(ctx, a)
	case ActionEditSession:
		return here, editSession(ctx, a, out.ID)
	case ActionLogout:
		return nav.Route{Screen: nav.Login}, a.SignOut()
	}
	return here, errDone
}

func runTasks(ctx context.Context, a *app.App, notes *notify.Queue) (nav.Route, error) {
	here := nav.Route{Screen: nav.Tasks}

	m := NewTasksModel(ctx, a.Tasks, notes, a.Config.UI.Animations)
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return here, err
	}
	out := final.(TasksModel).Outcome()

	switch out.Action {
	case ActionNavigate:
		return out.Route, nil
	case ActionAddTask:
		return here, addTask(ctx, a)
	case ActionEditTask:
		return here, editTask(ctx, a, out.ID)
	case ActionLogout:
		return nav.Route{Screen: nav.Login}, a.SignOut()
	}
	return here, errDone
}

// The form helpers swallow a cancelled form; store failures have already
// been turned into notifications.

func addSession(ctx context.Context, a *app.App) error {
	now := time.Now()
	in := NewSessionInput(now)
	if err := RunSessionForm(&in, false, now); err != nil {
		return ignoreCancel(err)
	}
	ns, err := in.NewSession(now)
	if err != nil {
		return err
	}
	if _, err := a.Sessions.Add(ctx, ns); err != nil {
		a.Logger.Warn("session_add_failed", "error", err)
	}
	return nil
}

func editSession(ctx context.Context, a *app.App, id string) error {
	s, ok := a.Sessions.Get(id)
	if !ok {
		return nil
	}
	now := time.Now()
	in := SessionInputFrom(s)
	if err := RunSessionForm(&in, true, now); err != nil {
		return ignoreCancel(err)
	}
	patch, err := in.Patch(s, now)
	if err != nil {
		return err
	}
	if err := a.Sessions.Edit(ctx, id, patch); err != nil {
		a.Logger.Warn("session_edit_failed", "session_id", id, "error", err)
	}
	return nil
}

func addTask(ctx context.Context, a *app.App) error {
	now := time.Now()
	in := NewTaskInput()
	if err := RunTaskForm(&in, false, now); err != nil {
		return ignoreCancel(err)
	}
	nt, err := in.NewTask(now)
	if err != nil {
		return err
	}
	if _, err := a.Tasks.Add(ctx, nt); err != nil {
		a.Logger.Warn("task_add_failed", "error", err)
	}
	return nil
}

func editTask(ctx context.Context, a *app.App, id string) error {
	t, ok := a.Tasks.Get(id)
	if !ok {
		return nil
	}
	now := time.Now()
	in := TaskInputFrom(t)
	if err := RunTaskForm(&in, true, now); err != nil {
		return ignoreCancel(err)
	}
	patch, err := in.Patch(t, now)
	if err != nil {
		return err
	}
	if err := a.Tasks.Edit(ctx, id, patch); err != nil {
		a.Logger.Warn("task_edit_failed", "task_id", id, "error", err)
	}
	return nil
}

func ignoreCancel(err error) error {
	if errors.Is(err, ErrCancelled) {
		return nil
	}
	return err
}

// RunTimer opens the timer screen for id. The session's lease is held for
// as long as the screen is up.
func RunTimer(ctx context.Context, a *app.App, notes *notify.Queue, id string) (nav.Route, error) {
	back := nav.Route{Screen: nav.Dashboard}
	holder := uuid.NewString()

	if _, ok := a.Sessions.Get(id); ok {
		if err := a.Leases.Acquire(ctx, id, holder, a.Config.LeaseTTL()); err != nil {
			if errors.Is(err, db.ErrLeaseHeld) {
				notify.Errorf(a.Notifier, "This session is already open in another timer")
				return back, nil
			}
			return back, err
		}
		defer func() {
			if err := a.Leases.Release(context.WithoutCancel(ctx), id, holder); err != nil {
				a.Logger.Warn("lease_release_failed", "session_id", id, "error", err)
			}
		}()
	}

	m := NewTimerModel(ctx, id, TimerOptions{
		Sessions:   a.Sessions,
		Engine:     a.NewEngine,
		Lease:      a.Leases,
		Holder:     holder,
		LeaseTTL:   a.Config.LeaseTTL(),
		Notes:      notes,
		Logger:     a.Logger,
		Animations: a.Config.UI.Animations,
	})
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return back, err
	}
	return final.(TimerModel).Next(), nil
}
