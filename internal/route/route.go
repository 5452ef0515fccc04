// Package route names the client's screens and carries navigation
// requests between the pieces that decide a destination and the front end
// that shows it.
package route

import "sync"

// Route is a named screen.
type Route string

const (
	Login    Route = "login"
	PunchIn  Route = "punch-in"
	PunchOut Route = "punch-out"
	Admin    Route = "admin"
)

// Navigator moves the user to another screen.
type Navigator interface {
	Navigate(to Route)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(to Route)

// Navigate calls f(to).
func (f NavigatorFunc) Navigate(to Route) { f(to) }

// Discard ignores every navigation.
var Discard Navigator = NavigatorFunc(func(Route) {})

// Recorder remembers navigations in order. Safe for concurrent use.
type Recorder struct {
	mu   sync.Mutex
	hops []Route
}

// Navigate records to.
func (r *Recorder) Navigate(to Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hops = append(r.hops, to)
}

// Hops returns a copy of every recorded navigation.
func (r *Recorder) Hops() []Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Route(nil), r.hops...)
}

// Last returns the most recent navigation and whether there was one.
func (r *Recorder) Last() (Route, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.hops) == 0 {
		return "", false
	}
	return r.hops[len(r.hops)-1], true
}
