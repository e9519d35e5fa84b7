// Package greek scrapes the Greek Theatre Berkeley event listing.
package greek

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"bevents/internal/domain"
	"bevents/internal/source"
)

const (
	ID       = "greek_theatre"
	Name     = "The Greek Theatre"
	Location = "The Greek Theatre, Berkeley"

	Latitude  = 37.8733
	Longitude = -122.2545

	showDateLayout = "January 2, 2006 3:04 pm"
)

// cardSelectors are tried in order; the first one with matches wins.
var cardSelectors = []string{
	"div.mix.detail-information",
	"article.event",
	"div.event",
	".event-item",
	".event-card",
	"article",
	"li.event",
	".listing-item",
}

var fallbackCardClass = regexp.MustCompile(`(?i)event|listing|card`)

// Source implements service.Source for the Greek Theatre.
type Source struct {
	url      string
	fetcher  *source.Fetcher
	location *time.Location
	now      func() time.Time
	logger   *slog.Logger
}

// New creates a Greek Theatre source. Show times are read in loc.
func New(listingURL string, fetcher *source.Fetcher, loc *time.Location, logger *slog.Logger) *Source {
	if loc == nil {
		loc = source.Pacific()
	}
	return &Source{
		url:      listingURL,
		fetcher:  fetcher,
		location: loc,
		now:      time.Now,
		logger:   logger.With("source", ID),
	}
}

func (s *Source) ID() string {
	return ID
}

func (s *Source) Name() string {
	return Name
}

// FetchEvents downloads the listing and returns every show that has both a
// title and a parseable start time.
func (s *Source) FetchEvents(ctx context.Context) ([]domain.ScrapedEvent, error) {
	base, err := url.Parse(s.url)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	body, err := s.fetcher.Get(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	return s.extract(doc, base), nil
}

func (s *Source) extract(doc *goquery.Document, base *url.URL) []domain.ScrapedEvent {
	cards := findCards(doc)
	s.logger.Debug("found show cards", "count", cards.Length())

	scrapedAt := s.now().UTC()
	seen := make(map[string]struct{})
	var events []domain.ScrapedEvent

	cards.Each(func(_ int, card *goquery.Selection) {
		title := source.Text(card.Find(".show-title, h2.show-title"))
		if title == "" {
			return
		}

		start, ok := s.showTime(card)
		if !ok {
			s.logger.Debug("skipping show without date", "title", title)
			return
		}

		key := title + "|" + start.Format(time.RFC3339)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}

		sourceURL := s.url
		if href, ok := card.Find("a[href]").First().Attr("href"); ok {
			sourceURL = source.Resolve(base, href)
		}

		var image *string
		if src, ok := card.Find("img[src]").First().Attr("src"); ok {
			image = source.OptionalString(source.Resolve(base, src))
		}

		lat, lon := Latitude, Longitude
		events = append(events, domain.ScrapedEvent{
			SourceID:    ID,
			Title:       title,
			Description: source.OptionalString(description(card)),
			Category:    domain.CategoryArts,
			Location:    Location,
			Latitude:    &lat,
			Longitude:   &lon,
			StartTime:   &start,
			ImageURL:    image,
			SourceURL:   sourceURL,
			ScrapedAt:   scrapedAt,
		})
	})

	return events
}

func (s *Source) showTime(card *goquery.Selection) (time.Time, bool) {
	content, ok := card.Find(".date-show").First().Attr("content")
	if !ok {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(showDateLayout, strings.ToLower(strings.TrimSpace(content)), s.location)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func findCards(doc *goquery.Document) *goquery.Selection {
	for _, sel := range cardSelectors {
		if cards := doc.Find(sel); cards.Length() > 0 {
			return cards
		}
	}
	return doc.Find("article, div").FilterFunction(source.ClassMatcher(fallbackCardClass))
}

func description(card *goquery.Selection) string {
	for _, sel := range []string{".description", ".event-description", "p", ".excerpt"} {
		if text := source.Text(card.Find(sel)); text != "" {
			return text
		}
	}
	return ""
}
