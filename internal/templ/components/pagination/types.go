// Package pagination provides the view of the page-number strip.
package pagination

import (
	"net/url"
	"strconv"

	"github.com/DukeRupert/clientdesk/internal/pagination"
)

// Config allows customization of pagination behavior.
type Config struct {
	BaseURL     string // page URL, e.g. "/"
	FragmentURL string // htmx list fragment, e.g. "/clients"
	TargetID    string // htmx target, e.g. "client-list"
}

// View is pagination data bound to the URLs it links to.
type View struct {
	pagination.Data
	Config
}

// NewView binds data to cfg.
func NewView(d pagination.Data, cfg Config) View {
	return View{Data: d, Config: cfg}
}

// PageURL is the address-bar URL of a page.
func (v View) PageURL(page int) string {
	return withPage(v.BaseURL, page)
}

// FragmentPageURL is the fragment URL htmx fetches for a page.
func (v View) FragmentPageURL(page int) string {
	return withPage(v.FragmentURL, page)
}

// Target is the CSS selector of the swapped element.
func (v View) Target() string {
	return "#" + v.TargetID
}

// withPage appends the page parameter. Page 1 is the bare URL.
func withPage(base string, page int) string {
	if page <= 1 {
		return base
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	return base + "?" + q.Encode()
}
