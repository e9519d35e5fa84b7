package discovery

import (
	"fmt"

	"bevents/internal/domain"
)

// Selector is the active category chip: none, a category id, or the top
// sentinel. The top sentinel switches the filter into truncation mode and
// is never compared against an event's category.
type Selector string

const (
	SelectNone Selector = ""
	SelectTop  Selector = "top"
)

// SelectCategory returns the selector for c.
func SelectCategory(c domain.Category) Selector {
	return Selector(c)
}

// ParseSelector accepts "", "top" or a known category id.
func ParseSelector(s string) (Selector, error) {
	switch Selector(s) {
	case SelectNone, SelectTop:
		return Selector(s), nil
	}
	if !domain.Category(s).Valid() {
		return SelectNone, fmt.Errorf("unknown category %q", s)
	}
	return Selector(s), nil
}

// Toggle returns the selector after the user presses pressed: pressing the
// active chip clears it, pressing another one selects it.
func (s Selector) Toggle(pressed Selector) Selector {
	if s == pressed {
		return SelectNone
	}
	return pressed
}

func (s Selector) IsTop() bool { return s == SelectTop }

// Category returns the category the selector restricts to, if any.
func (s Selector) Category() (domain.Category, bool) {
	if s == SelectNone || s == SelectTop {
		return "", false
	}
	return domain.Category(s), true
}
