// Package session stores authenticated browser sessions and provides the
// cookie constants shared by the handler and middleware packages.
package session

const (
	// CookieName is the name of the cookie that stores the session token.
	CookieName = "clientdesk_session"

	// CookiePath ensures the cookie is sent with all requests.
	CookiePath = "/"
)
