package discovery

import (
	"strings"

	"bevents/internal/domain"
)

// SearchFields selects which event fields a search query is matched against.
type SearchFields uint8

const (
	SearchTitle SearchFields = 1 << iota
	SearchDescription
)

// DefaultTopLimit is how many events the top selector keeps.
const DefaultTopLimit = 10

// Filter narrows an already recency-ordered event list. The zero value
// searches titles only.
type Filter struct {
	Fields   SearchFields
	TopLimit int
}

var (
	// HomeFilter matches the query against title and description.
	HomeFilter = Filter{Fields: SearchTitle | SearchDescription, TopLimit: DefaultTopLimit}
	// MapFilter matches the query against the title only.
	MapFilter = Filter{Fields: SearchTitle, TopLimit: DefaultTopLimit}
)

// Apply keeps the events matching both the query and the selector, in input
// order. With the top selector the result is cut to the first TopLimit
// matches. events is not modified.
func (f Filter) Apply(events []domain.Event, query string, sel Selector) []domain.Event {
	needle := strings.ToLower(query)

	out := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if f.matchesSearch(e, needle) && MatchesCategory(e, sel) {
			out = append(out, e)
		}
	}

	if sel.IsTop() {
		limit := f.TopLimit
		if limit <= 0 {
			limit = DefaultTopLimit
		}
		out = First(out, limit)
	}
	return out
}

// MatchesSearch reports whether e matches query under f's field set.
func (f Filter) MatchesSearch(e domain.Event, query string) bool {
	return f.matchesSearch(e, strings.ToLower(query))
}

func (f Filter) matchesSearch(e domain.Event, needle string) bool {
	if needle == "" {
		return true
	}
	fields := f.Fields
	if fields == 0 {
		fields = SearchTitle
	}
	if fields&SearchTitle != 0 && strings.Contains(strings.ToLower(e.Title), needle) {
		return true
	}
	if fields&SearchDescription != 0 && e.Description != nil &&
		strings.Contains(strings.ToLower(*e.Description), needle) {
		return true
	}
	return false
}

// MatchesCategory reports whether e passes the selector.
func MatchesCategory(e domain.Event, sel Selector) bool {
	c, ok := sel.Category()
	if !ok {
		return true
	}
	return e.Category == c
}

// First returns at most the first n events.
func First(events []domain.Event, n int) []domain.Event {
	if n < 0 {
		n = 0
	}
	if n > len(events) {
		n = len(events)
	}
	out := make([]domain.Event, n)
	copy(out, events[:n])
	return out
}

// Trending returns the n newest events. There is no popularity signal:
// input is ordered by created_at, so trending means most recent.
func Trending(events []domain.Event, n int) []domain.Event { return First(events, n) }

// Recent returns the n newest events for the profile's recent strip.
func Recent(events []domain.Event, n int) []domain.Event { return First(events, n) }

// QuickAdd returns the n newest events for the profile's quick add list.
func QuickAdd(events []domain.Event, n int) []domain.Event { return First(events, n) }
