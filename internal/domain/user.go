// Package domain contains core business types and interfaces.
//
// This file defines the signed-in user, the local session that wraps the
// backend token, and the authentication form inputs.
package domain

import (
	"net/netip"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// User is the profile returned by the backend on login.
type User struct {
	ID    ClientID `json:"id,omitempty"`
	Name  string   `json:"name"`
	Email string   `json:"email,omitempty"`
}

// DisplayName returns the user's name or a generic label.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if u.Email != "" {
		return u.Email
	}
	return "Usuário"
}

// Initial returns the upper-cased first letter of the user's name, or "U".
func (u User) Initial() string {
	name := strings.TrimSpace(u.Name)
	if name == "" {
		return "U"
	}
	r, _ := utf8.DecodeRuneInString(name)
	return cases.Upper(language.BrazilianPortuguese).String(string(r))
}

// Session is the authenticated state attached to a browser. It holds the
// backend bearer token and the profile returned alongside it.
type Session struct {
	ID        uuid.UUID
	Token     string // Backend bearer token; never rendered
	User      User
	IPAddress netip.Addr
	UserAgent string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionMeta carries request details recorded with a new session.
type SessionMeta struct {
	IPAddress netip.Addr
	UserAgent string
}

// LoginInput is the validated payload of the login form.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterInput is the validated payload of the registration form.
type RegisterInput struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// LoginResult is returned by a successful login. RawToken is the cookie
// value and is not stored anywhere in plaintext.
type LoginResult struct {
	Session  *Session
	RawToken string
}
