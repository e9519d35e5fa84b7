package discovery

import (
	"encoding/json"
	"fmt"

	"bevents/internal/domain"
)

const (
	TrendingCount = 5
	RecentCount   = 3
	QuickAddCount = 5
	// ProfileFetchLimit is the row limit of the profile screen's query.
	ProfileFetchLimit = 10
)

// HomeScreen is the home feed: a trending strip and the filtered grid.
type HomeScreen struct {
	Trending []domain.Event `json:"trending,omitempty"`
	All      []domain.Event `json:"all"`
}

// HomeView builds the home feed. The trending strip is only shown while
// no query and no chip are active.
func HomeView(events []domain.Event, sel *SelectionState) HomeScreen {
	var screen HomeScreen
	if sel.Query == "" && sel.Selector == SelectNone {
		screen.Trending = Trending(events, TrendingCount)
	}
	screen.All = HomeFilter.Apply(events, sel.Query, sel.Selector)
	return screen
}

type Marker struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	ImageURL  string  `json:"image_url"`
}

type MapScreen struct {
	Markers []Marker `json:"markers"`
}

// MapView builds the map markers. The map screen starts on the top chip,
// see NewMapState.
func MapView(events []domain.Event, sel *SelectionState) MapScreen {
	shown := MapFilter.Apply(events, sel.Query, sel.Selector)
	screen := MapScreen{Markers: make([]Marker, 0, len(shown))}
	for _, e := range shown {
		screen.Markers = append(screen.Markers, Marker{
			ID:        e.ID,
			Title:     e.Title,
			Latitude:  e.Latitude,
			Longitude: e.Longitude,
			ImageURL:  e.ImageURL,
		})
	}
	return screen
}

// NewMapState returns the map screen's initial selection.
func NewMapState() *SelectionState { return NewSelectionState(SelectTop) }

type ProfileCard struct {
	Event      domain.Event `json:"event"`
	Bookmarked bool         `json:"bookmarked"`
	Checked    bool         `json:"checked"`
}

type ProfileScreen struct {
	Recent   []ProfileCard `json:"recent"`
	QuickAdd []ProfileCard `json:"quick_add"`
}

// ProfileView builds the recent and quick add strips from the profile
// screen's limited fetch.
func ProfileView(events []domain.Event, sel *SelectionState) ProfileScreen {
	return ProfileScreen{
		Recent:   cards(Recent(events, RecentCount), sel),
		QuickAdd: cards(QuickAdd(events, QuickAddCount), sel),
	}
}

func cards(events []domain.Event, sel *SelectionState) []ProfileCard {
	out := make([]ProfileCard, 0, len(events))
	for _, e := range events {
		out = append(out, ProfileCard{
			Event:      e,
			Bookmarked: sel.Bookmarked.Contains(e.ID),
			Checked:    sel.Checked.Contains(e.ID),
		})
	}
	return out
}

// Badge returns the category badge for c. Values outside the enumeration
// get their raw id as label and the fallback emoji.
func Badge(c domain.Category) domain.CategoryDescriptor {
	if d, ok := domain.LookupCategory(c); ok {
		return d
	}
	return domain.CategoryDescriptor{ID: c, Label: string(c), Emoji: domain.UnknownCategoryEmoji}
}

// EventDetail is what the detail view renders.
type EventDetail struct {
	Event domain.Event              `json:"event"`
	Badge domain.CategoryDescriptor `json:"badge"`
}

// EncodeDetail serializes e for handing to the detail view.
func EncodeDetail(e domain.Event) ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return b, nil
}

// DecodeDetail is the detail view's side of EncodeDetail.
func DecodeDetail(payload []byte) (EventDetail, error) {
	var e domain.Event
	if err := json.Unmarshal(payload, &e); err != nil {
		return EventDetail{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return EventDetail{Event: e, Badge: Badge(e.Category)}, nil
}
