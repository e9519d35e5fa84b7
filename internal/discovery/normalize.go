// Package discovery holds the UI-free event discovery rules: record
// normalization, search and category filtering, derived views and the
// session-scoped toggle state the screens keep.
package discovery

import (
	"math/rand"

	"bevents/internal/domain"
)

// Region is a reference point on the map.
type Region struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// Berkeley is the default home region.
var Berkeley = Region{Latitude: 37.8719, Longitude: -122.2585}

// coordinateJitter bounds the synthesized offset on each axis, in degrees.
const coordinateJitter = 0.01

// Normalizer turns store rows into display-ready events.
//
// A missing latitude or longitude is synthesized around the home region;
// an axis the row does carry is kept.
// They are placeholders for geocoding: nothing is written back, and the same
// row gets a different position on every pass.
type Normalizer struct {
	home   Region
	random func() float64
}

// NewNormalizer returns a Normalizer centred on home. random must return
// values in [0, 1); nil uses math/rand.
func NewNormalizer(home Region, random func() float64) *Normalizer {
	if random == nil {
		random = rand.Float64
	}
	return &Normalizer{home: home, random: random}
}

// Normalize applies the image fallback and coordinate backfill to raw.
func (n *Normalizer) Normalize(raw domain.RawEvent) domain.Event {
	e := domain.Event{
		ID:          raw.ID,
		Title:       raw.Title,
		Description: raw.Description,
		Category:    raw.Category,
		Location:    raw.Location,
		StartTime:   raw.StartTime,
		EndTime:     raw.EndTime,
		ImageURL:    domain.DefaultEventImage,
		SourceURL:   raw.SourceURL,
		ClubName:    raw.ClubName,
		CreatedAt:   raw.CreatedAt,
		ScrapedAt:   raw.ScrapedAt,
	}

	if raw.ImageURL != nil && *raw.ImageURL != "" {
		e.ImageURL = *raw.ImageURL
	}

	if raw.Latitude != nil {
		e.Latitude = *raw.Latitude
	} else {
		e.Latitude = n.home.Latitude + n.offset()
		e.Synthesized = true
	}
	if raw.Longitude != nil {
		e.Longitude = *raw.Longitude
	} else {
		e.Longitude = n.home.Longitude + n.offset()
		e.Synthesized = true
	}

	return e
}

// NormalizeAll normalizes every row, keeping order.
func (n *Normalizer) NormalizeAll(raws []domain.RawEvent) []domain.Event {
	events := make([]domain.Event, 0, len(raws))
	for _, raw := range raws {
		events = append(events, n.Normalize(raw))
	}
	return events
}

// offset is uniform in [-coordinateJitter, +coordinateJitter).
func (n *Normalizer) offset() float64 {
	return (n.random() - 0.5) * 2 * coordinateJitter
}
