// Package nav maps route paths to screens and guards the ones that need a
// signed-in user.
package nav

import (
	"fmt"
	"strings"
)

// Screen identifies what a route shows
type Screen string

const (
	Home      Screen = "home"
	Login     Screen = "login"
	Register  Screen = "register"
	Dashboard Screen = "dashboard"
	Tasks     Screen = "tasks"
	Timer     Screen = "session"
)

// Route is a parsed path
type Route struct {
	Screen    Screen
	SessionID string // set for Timer
}

// Path renders the route back to its canonical path
func (r Route) Path() string {
	switch r.Screen {
	case Home:
		return "/"
	case Timer:
		return "/session/" + r.SessionID
	default:
		return "/" + string(r.Screen)
	}
}

func (r Route) String() string { return r.Path() }

// Protected reports whether the route needs an identity
func (r Route) Protected() bool {
	switch r.Screen {
	case Dashboard, Tasks, Timer:
		return true
	}
	return false
}

// SessionRoute is the timer route for id
func SessionRoute(id string) Route {
	return Route{Screen: Timer, SessionID: id}
}

// Parse reads a path such as "/session/abc". Trailing slashes and a missing
// leading slash are tolerated.
func Parse(path string) (Route, error) {
	clean := strings.Trim(strings.TrimSpace(path), "/")
	if clean == "" {
		return Route{Screen: Home}, nil
	}

	parts := strings.Split(clean, "/")
	switch Screen(parts[0]) {
	case Login, Register, Dashboard, Tasks:
		if len(parts) == 1 {
			return Route{Screen: Screen(parts[0])}, nil
		}
	case Timer:
		if len(parts) == 2 && parts[1] != "" {
			return SessionRoute(parts[1]), nil
		}
		return Route{}, fmt.Errorf("route %q: missing session id", path)
	}
	return Route{}, fmt.Errorf("route %q: not found", path)
}

// Resolve applies the auth guard: protected routes without an identity go to
// login, and login/register with an identity go to the dashboard.
func Resolve(r Route, authenticated bool) Route {
	switch {
	case r.Protected() && !authenticated:
		return Route{Screen: Login}
	case (r.Screen == Login || r.Screen == Register) && authenticated:
		return Route{Screen: Dashboard}
	case r.Screen == Home:
		if authenticated {
			return Route{Screen: Dashboard}
		}
		return Route{Screen: Login}
	}
	return r
}
