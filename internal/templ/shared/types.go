// Package shared holds view data used by every layout.
package shared

import "github.com/DukeRupert/clientdesk/internal/domain"

// Flash is a one-shot message shown above page content.
type Flash struct {
	Type    string // success, error, info
	Message string
}

// UserDisplay contains user info for display
type UserDisplay struct {
	Name    string
	Email   string
	Initial string
}

// NewUserDisplay formats a signed-in user for the header.
func NewUserDisplay(u domain.User) *UserDisplay {
	return &UserDisplay{
		Name:    u.DisplayName(),
		Email:   u.Email,
		Initial: u.Initial(),
	}
}

// Page carries what the layouts need on every render.
type Page struct {
	Title       string
	CurrentPath string
	CSRFToken   string
	User        *UserDisplay
	Flash       *Flash
}
