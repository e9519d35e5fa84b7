// Package categorize assigns a category to scraped events by keyword.
package categorize

import (
	"strings"

	"bevents/internal/domain"
)

type rule struct {
	category domain.Category
	keywords []string
}

// rules are checked in category display order; on a tied score the earlier
// category wins.
var rules = []rule{
	{domain.CategoryWork, []string{
		"career", "internship", "job", "recruitment", "hiring", "interview", "resume",
		"networking", "professional", "workshop", "info session", "infosession", "tech talk",
		"employer", "company", "startup",
	}},
	{domain.CategorySocial, []string{
		"social", "mixer", "meet and greet", "happy hour", "party", "celebration",
		"gathering", "bbq", "dinner", "lunch", "breakfast", "food", "free food",
		"potluck", "banquet", "reception",
	}},
	{domain.CategorySports, []string{
		"sport", "game", "tournament", "fitness", "yoga", "run", "marathon",
		"basketball", "soccer", "volleyball", "tennis", "recreation", "athletic",
		"intramural", "competition",
	}},
	{domain.CategoryArts, []string{
		"art", "music", "concert", "performance", "theater", "theatre", "dance",
		"exhibition", "gallery", "film", "movie", "poetry", "cultural", "show",
		"screening", "anime", "cosplay",
	}},
	{domain.CategoryLeisure, []string{
		"club meeting", "general meeting", "study", "discussion", "seminar",
		"lecture", "talk", "presentation", "fundraiser", "volunteer", "community",
		"activism", "awareness",
	}},
}

// Categorize scores title and description against each category's keywords,
// one point per keyword found as a substring, and returns the best scoring
// category. Events matching nothing are leisure.
func Categorize(title, description string) domain.Category {
	text := strings.ToLower(title + " " + description)

	best := domain.CategoryLeisure
	bestScore := 0
	for _, r := range rules {
		score := 0
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = r.category, score
		}
	}
	return best
}

// Scores returns the per-category keyword hit counts, for diagnostics.
func Scores(title, description string) map[domain.Category]int {
	text := strings.ToLower(title + " " + description)

	scores := make(map[domain.Category]int)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				scores[r.category]++
			}
		}
	}
	return scores
}
