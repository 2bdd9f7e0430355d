package nav

import (
	"sync"

	"pulseadmin/internal/logging"
)

// AuthFunc reports whether a session token is present.
type AuthFunc func() bool

// Router tracks the current destination and a back stack, re-running the
// guard on every move.
type Router struct {
	mu      sync.Mutex
	authed  AuthFunc
	current Destination
	history []Destination
}

// NewRouter starts at start (guarded).
func NewRouter(authed AuthFunc, start string) *Router {
	r := &Router{authed: authed}
	r.current, _ = r.resolve(start)
	return r
}

func (r *Router) resolve(path string) (Destination, bool) {
	d, redirected := Resolve(path, r.authed())
	if redirected {
		logging.Nav("guard: %s -> %s", path, d.Path)
	}
	return d, redirected
}

// Current returns the destination on screen.
func (r *Router) Current() Destination {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Navigate pushes the current destination and moves to path.
func (r *Router) Navigate(path string) Destination {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, _ := r.resolve(path)
	if d.Path != r.current.Path {
		r.history = append(r.history, r.current)
	}
	r.current = d
	logging.NavDebug("navigate %s (%s)", d.Path, d.Route)
	return d
}

// Replace moves to path without touching the back stack.
func (r *Router) Replace(path string) Destination {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current, _ = r.resolve(path)
	return r.current
}

// Reset clears history and moves to path. Used on login and logout.
func (r *Router) Reset(path string) Destination {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = nil
	r.current, _ = r.resolve(path)
	return r.current
}

// Back pops the back stack. It returns false when there is nowhere to go.
func (r *Router) Back() (Destination, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.history) == 0 {
		return r.current, false
	}
	prev := r.history[len(r.history)-1]
	r.history = r.history[:len(r.history)-1]
	r.current, _ = r.resolve(prev.Path)
	return r.current, true
}

// CanGoBack reports whether Back would move.
func (r *Router) CanGoBack() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.history) > 0
}

// Recheck re-applies the guard to the current destination after the login
// state changed. Losing the token sends a protected page to /login; gaining
// one moves /login to the dashboard. It reports whether the page changed.
func (r *Router) Recheck() (Destination, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	authed := r.authed()
	switch {
	case !authed && r.current.Route.Protected():
		r.history = nil
		r.current = Destination{Route: RouteLogin, Path: PathLogin}
		logging.Nav("guard: session ended, showing login")
		return r.current, true
	case authed && r.current.Route == RouteLogin:
		r.history = nil
		r.current = Parse(PathDashboard)
		logging.Nav("guard: session started, showing dashboard")
		return r.current, true
	}
	return r.current, false
}
