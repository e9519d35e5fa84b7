package source

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"01/02/2006",
	"2006-01-02",
	"2 January 2006",
	"2 Jan 2006",
	"January 2 2006",
	"Jan 2 2006",
}

// defaultHour is used when a listing gives a date without a time.
const defaultHour = 19

var nonClock = regexp.MustCompile(`[^\d:]`)

// ParseDateTime combines a listing's date and optional time of day into a
// wall-clock time in loc. Dates without a time default to 19:00.
func ParseDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	var day time.Time
	var err error
	for _, layout := range dateLayouts {
		day, err = time.ParseInLocation(layout, date, loc)
		if err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q", date)
	}

	hour, minute := defaultHour, 0
	if c := strings.ToUpper(strings.TrimSpace(clock)); c != "" {
		hour, minute, err = parseClock(c)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse time %q: %w", clock, err)
		}
	}

	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc), nil
}

func parseClock(c string) (int, int, error) {
	pm := strings.Contains(c, "PM")
	am := strings.Contains(c, "AM")

	digits := c
	if pm || am {
		digits = nonClock.ReplaceAllString(c, "")
	}

	hour, minute := 0, 0
	var err error
	if h, m, ok := strings.Cut(digits, ":"); ok {
		if hour, err = strconv.Atoi(h); err != nil {
			return 0, 0, err
		}
		if minute, err = strconv.Atoi(m); err != nil {
			return 0, 0, err
		}
	} else if hour, err = strconv.Atoi(digits); err != nil {
		return 0, 0, err
	}

	switch {
	case pm && hour != 12:
		hour += 12
	case am && hour == 12:
		hour = 0
	}

	if hour > 23 || minute > 59 {
		return 0, 0, fmt.Errorf("out of range")
	}
	return hour, minute, nil
}
