// Package guard decides where a page mount should redirect, if
// anywhere, from the page kind and the session state alone. Keeping
// the decision pure means the gating logic is testable without any
// shell.
package guard

// Route is a navigation target in the shell's route table.
type Route string

const (
	RouteHome     Route = "/"
	RouteLogin    Route = "/login"
	RouteRegister Route = "/register"
)

// PageKind classifies pages by their session requirement.
type PageKind int

const (
	// PageProtected requires an authenticated session (home).
	PageProtected PageKind = iota
	// PagePublicAuth is only for unauthenticated visitors (login,
	// registration).
	PagePublicAuth
)

// Decide returns the redirect target for mounting a page with the
// given session state, and whether a redirect is required at all.
// It must be re-evaluated whenever the session token pair changes so a
// stale page is not left rendered after a session transition.
func Decide(page PageKind, authenticated bool) (Route, bool) {
	switch page {
	case PageProtected:
		if !authenticated {
			return RouteLogin, true
		}
	case PagePublicAuth:
		if authenticated {
			return RouteHome, true
		}
	}
	return "", false
}

// Navigator is the seam between the pure decision and whatever
// actually switches pages.
type Navigator interface {
	Navigate(Route)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(Route)

func (f NavigatorFunc) Navigate(r Route) { f(r) }
