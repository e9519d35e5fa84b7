package discovery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"bevents/internal/domain"
	"bevents/internal/testutil"
)

func fixedRandom(values ...float64) func() float64 {
	i := 0
	return func() float64 {
		v := values[i%len(values)]
		i++
		return v
	}
}

func TestNormalize_ImageFallback(t *testing.T) {
	n := NewNormalizer(Berkeley, nil)

	tests := []struct {
		name  string
		image *string
		want  string
	}{
		{name: "nil image", image: nil, want: domain.DefaultEventImage},
		{name: "empty image", image: testutil.Ptr(""), want: domain.DefaultEventImage},
		{name: "image kept", image: testutil.Ptr("https://example.com/a.jpg"), want: "https://example.com/a.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := n.Normalize(domain.RawEvent{ID: "e1", Title: "Career Fair", ImageURL: tt.image})
			assert.Equal(t, tt.want, e.ImageURL)
		})
	}
}

func TestNormalize_KeepsCoordinates(t *testing.T) {
	calls := 0
	n := NewNormalizer(Berkeley, func() float64 {
		calls++
		return 0.3
	})

	e := n.Normalize(domain.RawEvent{
		ID:        "e1",
		Title:     "Greek Show",
		Latitude:  testutil.Ptr(37.8733),
		Longitude: testutil.Ptr(-122.2545),
	})

	assert.Equal(t, 37.8733, e.Latitude)
	assert.Equal(t, -122.2545, e.Longitude)
	assert.False(t, e.Synthesized)
	assert.Zero(t, calls)
}

func TestNormalize_SynthesizesAroundHome(t *testing.T) {
	tests := []struct {
		name    string
		random  []float64
		wantLat float64
		wantLon float64
	}{
		{name: "lower bound", random: []float64{0, 0}, wantLat: Berkeley.Latitude - 0.01, wantLon: Berkeley.Longitude - 0.01},
		{name: "center", random: []float64{0.5, 0.5}, wantLat: Berkeley.Latitude, wantLon: Berkeley.Longitude},
		{name: "independent axes", random: []float64{0.75, 0.25}, wantLat: Berkeley.Latitude + 0.005, wantLon: Berkeley.Longitude - 0.005},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNormalizer(Berkeley, fixedRandom(tt.random...))
			e := n.Normalize(domain.RawEvent{ID: "e1", Title: "Mixer"})

			assert.True(t, e.Synthesized)
			assert.InDelta(t, tt.wantLat, e.Latitude, 1e-9)
			assert.InDelta(t, tt.wantLon, e.Longitude, 1e-9)
		})
	}
}

func TestNormalize_SynthesizesOnlyMissingAxis(t *testing.T) {
	n := NewNormalizer(Berkeley, fixedRandom(0.75))

	e := n.Normalize(domain.RawEvent{ID: "e1", Title: "Mixer", Latitude: testutil.Ptr(37.8733)})
	assert.True(t, e.Synthesized)
	assert.Equal(t, 37.8733, e.Latitude)
	assert.InDelta(t, Berkeley.Longitude+0.005, e.Longitude, 1e-9)

	e = n.Normalize(domain.RawEvent{ID: "e2", Title: "Mixer", Longitude: testutil.Ptr(-122.2545)})
	assert.True(t, e.Synthesized)
	assert.InDelta(t, Berkeley.Latitude+0.005, e.Latitude, 1e-9)
	assert.Equal(t, -122.2545, e.Longitude)
}

func TestNormalize_SynthesizedStaysInRange(t *testing.T) {
	n := NewNormalizer(Berkeley, nil)
	raw := domain.RawEvent{ID: "e1", Title: "Mixer"}

	for i := 0; i < 500; i++ {
		e := n.Normalize(raw)
		assert.GreaterOrEqual(t, e.Latitude, Berkeley.Latitude-0.01)
		assert.LessOrEqual(t, e.Latitude, Berkeley.Latitude+0.01)
		assert.GreaterOrEqual(t, e.Longitude, Berkeley.Longitude-0.01)
		assert.LessOrEqual(t, e.Longitude, Berkeley.Longitude+0.01)
	}
}

func TestNormalize_PassesThroughOtherFields(t *testing.T) {
	n := NewNormalizer(Berkeley, nil)
	created := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)
	raw := domain.RawEvent{
		ID:          "e1",
		Title:       "Career Fair",
		Description: testutil.Ptr("Meet employers"),
		Category:    domain.Category("karaoke"),
		Location:    "MLK Ballroom",
		SourceURL:   "https://callink.berkeley.edu/event/1",
		ClubName:    testutil.Ptr("Career Center"),
		CreatedAt:   created,
	}

	e := n.Normalize(raw)

	assert.Equal(t, "e1", e.ID)
	assert.Equal(t, "Career Fair", e.Title)
	assert.Equal(t, "Meet employers", *e.Description)
	assert.Equal(t, domain.Category("karaoke"), e.Category)
	assert.Equal(t, "MLK Ballroom", e.Location)
	assert.Equal(t, "https://callink.berkeley.edu/event/1", e.SourceURL)
	assert.Equal(t, "Career Center", *e.ClubName)
	assert.Equal(t, created, e.CreatedAt)
}

func TestNormalizeAll_KeepsOrder(t *testing.T) {
	n := NewNormalizer(Berkeley, nil)
	raws := []domain.RawEvent{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	events := n.NormalizeAll(raws)

	assert.Len(t, events, 3)
	assert.Equal(t, "a", events[0].ID)
	assert.Equal(t, "c", events[2].ID)
}
