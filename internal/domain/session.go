package domain

import "time"

// Session is the per-interaction mutable state container. One session per
// logical user interaction; it is mutated exclusively by the navigation
// controller and never shared across interactions.
type Session struct {
	ID        string
	Page      Page
	Username  string
	Bundle    *OutputBundle
	CreatedAt time.Time
}

// LoggedIn reports whether the session carries an authenticated identity.
func (s *Session) LoggedIn() bool {
	return s.Username != ""
}
