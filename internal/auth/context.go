// Package auth provides authentication context helpers.
//
// This package is designed to be imported by both middleware and handler
// packages without causing import cycles.
package auth

import (
	"context"
	"net/http"

	"github.com/DukeRupert/clientdesk/internal/domain"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// sessionContextKey is the key used to store the resolved session in context.
	sessionContextKey contextKey = "session"
)

// GetSession retrieves the resolved session from the context.
//
// Returns nil if the request is not signed in.
func GetSession(ctx context.Context) *domain.Session {
	s, ok := ctx.Value(sessionContextKey).(*domain.Session)
	if !ok {
		return nil
	}
	return s
}

// GetSessionFromRequest is a convenience wrapper around GetSession.
func GetSessionFromRequest(r *http.Request) *domain.Session {
	return GetSession(r.Context())
}

// GetUser returns the signed-in user, or nil.
func GetUser(ctx context.Context) *domain.User {
	s := GetSession(ctx)
	if s == nil {
		return nil
	}
	return &s.User
}

// SetSession stores a session in the context.
//
// This is called by the session middleware after resolving the cookie.
func SetSession(ctx context.Context, s *domain.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}
