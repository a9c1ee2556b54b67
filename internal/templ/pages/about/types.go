// Package about holds view data for the static pages.
package about

import "github.com/DukeRupert/clientdesk/internal/templ/shared"

// PageData contains data for the about page
type PageData struct {
	shared.Page
	Features []string
}

// ErrorPageData contains data for the error page
type ErrorPageData struct {
	shared.Page
	Status  int
	Message string
}
