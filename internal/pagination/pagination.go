// Package pagination provides the page arithmetic shared by list pages.
package pagination

import "strconv"

// MaxVisible is the number of slots in the page-number window.
const MaxVisible = 5

// Item is one entry of the page-number strip: either a page number or a gap.
type Item struct {
	Page int
	Gap  bool
}

// Label returns the text shown for the item.
func (i Item) Label() string {
	if i.Gap {
		return "..."
	}
	return strconv.Itoa(i.Page)
}

func page(n int) Item { return Item{Page: n} }

var gap = Item{Gap: true}

// Slice returns the items shown on the given 1-indexed page. It returns an
// empty slice for nil input, a non-positive size, or a page out of range.
func Slice[T any](items []T, page, size int) []T {
	if len(items) == 0 || size <= 0 || page < 1 {
		return []T{}
	}
	// Compare page indexes before multiplying so a huge page cannot
	// overflow into range.
	if page-1 > (len(items)-1)/size {
		return []T{}
	}
	start := (page - 1) * size
	end := start + min(size, len(items)-start)
	return items[start:end]
}

// TotalPages returns ceil(count/size). A non-positive size yields 0.
func TotalPages(count, size int) int {
	if count <= 0 || size <= 0 {
		return 0
	}
	return (count + size - 1) / size
}

// Clamp snaps page into [1, totalPages]. An empty collection yields 1.
func Clamp(page, totalPages int) int {
	if totalPages < 1 || page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Numbers returns the page-number strip for the current page.
//
// Up to MaxVisible pages are listed in full. Beyond that the first and last
// pages are always present and gaps stand in for the skipped ranges.
func Numbers(currentPage, totalPages int) []Item {
	if totalPages <= 0 {
		return []Item{}
	}

	if totalPages <= MaxVisible {
		pages := make([]Item, 0, totalPages)
		for i := 1; i <= totalPages; i++ {
			pages = append(pages, page(i))
		}
		return pages
	}

	switch {
	case currentPage <= 3:
		return []Item{page(1), page(2), page(3), page(4), gap, page(totalPages)}
	case currentPage >= totalPages-2:
		pages := []Item{page(1), gap}
		for i := totalPages - 3; i <= totalPages; i++ {
			pages = append(pages, page(i))
		}
		return pages
	default:
		return []Item{
			page(1), gap,
			page(currentPage - 1), page(currentPage), page(currentPage + 1),
			gap, page(totalPages),
		}
	}
}

// State is the pagination state of one list view.
type State struct {
	CurrentPage int
	PerPage     int
}

// Resize re-clamps the current page after the collection size changed and
// reports whether the page moved.
func (s *State) Resize(count int) bool {
	clamped := Clamp(s.CurrentPage, TotalPages(count, s.PerPage))
	if clamped == s.CurrentPage {
		return false
	}
	s.CurrentPage = clamped
	return true
}

// Data contains pagination information for display.
type Data struct {
	CurrentPage int
	TotalPages  int
	PerPage     int
	Total       int
	HasPrevious bool
	HasNext     bool
	PrevPage    int
	NextPage    int
	Pages       []Item
}

// New builds display data for a collection of total items. The requested
// page is clamped first.
func New(currentPage, perPage, total int) Data {
	totalPages := TotalPages(total, perPage)
	currentPage = Clamp(currentPage, totalPages)

	return Data{
		CurrentPage: currentPage,
		TotalPages:  totalPages,
		PerPage:     perPage,
		Total:       total,
		HasPrevious: currentPage > 1,
		HasNext:     currentPage < totalPages,
		PrevPage:    currentPage - 1,
		NextPage:    currentPage + 1,
		Pages:       Numbers(currentPage, totalPages),
	}
}

// Show reports whether pagination controls are needed at all.
func (d Data) Show() bool {
	return d.TotalPages > 1
}
