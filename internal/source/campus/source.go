// Package campus scrapes event listing pages that follow the usual
// "event card" markup, such as CalLink and events.berkeley.edu.
package campus

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"bevents/internal/categorize"
	"bevents/internal/domain"
	"bevents/internal/source"
)

const defaultLocation = "TBA"

var (
	cardClass     = regexp.MustCompile(`(?i)event`)
	titleClass    = regexp.MustCompile(`(?i)title|name|heading`)
	eventLink     = regexp.MustCompile(`(?i)/event/`)
	descClass     = regexp.MustCompile(`(?i)desc|summary|content`)
	locationClass = regexp.MustCompile(`(?i)location|venue|place`)
	clubClass     = regexp.MustCompile(`(?i)club|organization|group`)
	dateClass     = regexp.MustCompile(`(?i)date`)
	timeClass     = regexp.MustCompile(`(?i)\btime\b`)
)

// Config describes one listing site.
type Config struct {
	ID        string
	Name      string
	URL       string
	MaxEvents int
	// Location is the zone listing times are read in. Nil means Pacific.
	Location *time.Location
}

// Source implements service.Source for a campus listing page.
type Source struct {
	cfg     Config
	fetcher *source.Fetcher
	now     func() time.Time
	logger  *slog.Logger
}

// New creates a campus source.
func New(cfg Config, fetcher *source.Fetcher, logger *slog.Logger) *Source {
	if cfg.Location == nil {
		cfg.Location = source.Pacific()
	}
	return &Source{
		cfg:     cfg,
		fetcher: fetcher,
		now:     time.Now,
		logger:  logger.With("source", cfg.ID),
	}
}

// ID returns the source identifier.
func (s *Source) ID() string {
	return s.cfg.ID
}

// Name returns human-readable name.
func (s *Source) Name() string {
	return s.cfg.Name
}

// FetchEvents downloads the listing page and extracts its event cards.
func (s *Source) FetchEvents(ctx context.Context) ([]domain.ScrapedEvent, error) {
	base, err := url.Parse(s.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	body, err := s.fetcher.Get(ctx, s.cfg.URL)
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
	cards := s.cards(doc)
	s.logger.Debug("found event cards", "count", cards.Length())

	scrapedAt := s.now().UTC()
	var events []domain.ScrapedEvent

	cards.Each(func(_ int, card *goquery.Selection) {
		title := source.Text(card.Find("h2, h3, h4, a").FilterFunction(source.ClassMatcher(titleClass)))
		if title == "" {
			title = source.Text(card.Find("a[href]").FilterFunction(func(_ int, a *goquery.Selection) bool {
				href, _ := a.Attr("href")
				return eventLink.MatchString(href)
			}))
		}
		if title == "" {
			return
		}

		description := source.Text(card.Find("p, div").FilterFunction(source.ClassMatcher(descClass)))

		location := source.Text(card.Find("span, div, p").FilterFunction(source.ClassMatcher(locationClass)))
		if location == "" {
			location = defaultLocation
		}

		sourceURL := s.cfg.URL
		if href, ok := card.Find("a[href]").First().Attr("href"); ok {
			sourceURL = source.Resolve(base, href)
		}

		club := source.Text(card.Find("span, div, p").FilterFunction(source.ClassMatcher(clubClass)))

		var start *time.Time
		if t, ok := s.startTime(card); ok {
			start = &t
		}

		events = append(events, domain.ScrapedEvent{
			SourceID:    s.cfg.ID,
			Title:       title,
			Description: source.OptionalString(description),
			Category:    categorize.Categorize(title, description),
			Location:    location,
			SourceURL:   sourceURL,
			StartTime:   start,
			ClubName:    source.OptionalString(club),
			ScrapedAt:   scrapedAt,
		})
	})

	return events
}

// startTime reads a machine readable <time datetime> first and falls back
// to the listing's date and time labels.
func (s *Source) startTime(card *goquery.Selection) (time.Time, bool) {
	if dt, ok := card.Find("time[datetime]").First().Attr("datetime"); ok {
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(dt)); err == nil {
			return t, true
		}
	}

	date := source.Text(card.Find("span, p, time").FilterFunction(source.ClassMatcher(dateClass)))
	if date == "" {
		return time.Time{}, false
	}
	clock := source.Text(card.Find("span, p, time").FilterFunction(source.ClassMatcher(timeClass)))

	t, err := source.ParseDateTime(date, clock, s.cfg.Location)
	if err != nil {
		s.logger.Debug("unparseable event date", "date", date, "time", clock, "error", err)
		return time.Time{}, false
	}
	return t, true
}

// cards returns the innermost elements that look like event cards, capped
// at MaxEvents.
func (s *Source) cards(doc *goquery.Document) *goquery.Selection {
	isCard := source.ClassMatcher(cardClass)

	cards := doc.Find("div, article").FilterFunction(func(i int, sel *goquery.Selection) bool {
		return isCard(i, sel) && sel.Find("div, article").FilterFunction(isCard).Length() == 0
	})
	if cards.Length() == 0 {
		cards = doc.Find("article[data-event], div[data-event], div[data-event-id]")
	}

	if s.cfg.MaxEvents > 0 && cards.Length() > s.cfg.MaxEvents {
		cards = cards.Slice(0, s.cfg.MaxEvents)
	}
	return cards
}
