package source

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ClassMatcher keeps selections whose class attribute matches re.
func ClassMatcher(re *regexp.Regexp) func(int, *goquery.Selection) bool {
	return func(_ int, s *goquery.Selection) bool {
		class, ok := s.Attr("class")
		return ok && re.MatchString(class)
	}
}

// Text returns the trimmed text of the first element of s.
func Text(s *goquery.Selection) string {
	return strings.TrimSpace(s.First().Text())
}

// Resolve makes ref absolute against base. Unparseable refs are returned
// unchanged.
func Resolve(base *url.URL, ref string) string {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

// OptionalString returns nil for an empty s.
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Pacific is the campus time zone, or UTC when tzdata is unavailable.
func Pacific() *time.Location {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		return time.UTC
	}
	return loc
}
