// Package guard decides, from the authentication status and the current
// path, whether a view may render or must be replaced by another path.
package guard

import (
	"slices"
	"sync"
)

// Status is the authentication state of the frontend.
type Status int

const (
	Loading Status = iota
	Unauthenticated
	Authenticated
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	}
	return "unknown"
}

// Rules lists the guarded paths. Paths match exactly.
type Rules struct {
	Dashboard     []string // need a session; anonymous users go Home
	Creation      []string // need a session; anonymous users go to Login
	Login         string
	Home          string
	DashboardHome string // where an authenticated user on Login is sent
}

// DefaultRules returns the frontend's route table.
func DefaultRules() Rules {
	return Rules{
		Dashboard:     []string{"/dashboard"},
		Creation:      []string{"/create"},
		Login:         "/login",
		Home:          "/",
		DashboardHome: "/dashboard",
	}
}

// Decision is the outcome for one (status, path) pair. At most one of
// Redirect, Render and Placeholder is set.
type Decision struct {
	Redirect    string
	Render      bool
	Placeholder bool
}

// Decide is pure; it never navigates.
func Decide(r Rules, status Status, path string) Decision {
	switch status {
	case Loading:
		return Decision{Placeholder: true}
	case Unauthenticated:
		if slices.Contains(r.Dashboard, path) {
			return Decision{Redirect: r.Home}
		}
		if slices.Contains(r.Creation, path) {
			return Decision{Redirect: r.Login}
		}
	case Authenticated:
		if path == r.Login {
			return Decision{Redirect: r.DashboardHome}
		}
	}
	return Decision{Render: true}
}

// Navigator replaces the current path without adding a history entry.
type Navigator interface {
	Replace(path string)
}

// Guard applies Decide to a Navigator.
type Guard struct {
	rules Rules
	nav   Navigator

	mu      sync.Mutex
	pending observation
}

type observation struct {
	status Status
	path   string
	target string
}

// New creates a Guard.
func New(rules Rules, nav Navigator) *Guard {
	return &Guard{rules: rules, nav: nav}
}

// Rules returns the guard's route table.
func (g *Guard) Rules() Rules {
	return g.rules
}

// Observe re-evaluates status and path and issues at most one Replace. A
// repeated observation of a state whose redirect is already pending does
// not navigate again.
func (g *Guard) Observe(status Status, path string) Decision {
	d := Decide(g.rules, status, path)

	g.mu.Lock()
	obs := observation{status: status, path: path, target: d.Redirect}
	send := d.Redirect != "" && obs != g.pending
	if d.Redirect != "" {
		g.pending = obs
	} else {
		g.pending = observation{}
	}
	g.mu.Unlock()

	if send {
		g.nav.Replace(d.Redirect)
	}
	return d
}
