package domain

// Category is the closed set of event categories.
type Category string

const (
	CategoryWork    Category = "work"
	CategorySocial  Category = "social"
	CategorySports  Category = "sports"
	CategoryArts    Category = "arts"
	CategoryLeisure Category = "leisure"
)

// CategoryDescriptor is the chip/badge metadata for a category.
type CategoryDescriptor struct {
	ID    Category `json:"id"`
	Label string   `json:"label"`
	Emoji string   `json:"emoji"`
}

// Categories lists every category in chip display order.
var Categories = []CategoryDescriptor{
	{ID: CategoryWork, Label: "career", Emoji: "💼"},
	{ID: CategorySocial, Label: "social", Emoji: "🎉"},
	{ID: CategorySports, Label: "sports", Emoji: "⚽"},
	{ID: CategoryArts, Label: "arts", Emoji: "🎨"},
	{ID: CategoryLeisure, Label: "leisure", Emoji: "📚"},
}

// UnknownCategoryEmoji is shown on badges for values outside the enumeration.
const UnknownCategoryEmoji = "📚"

// DefaultEventImage replaces a missing event image.
const DefaultEventImage = "https://images.unsplash.com/photo-1540575467063-178a50c2df87?w=800&q=80"

// Valid reports whether c is a member of the enumeration.
func (c Category) Valid() bool {
	_, ok := LookupCategory(c)
	return ok
}

// LookupCategory returns the descriptor for c.
func LookupCategory(c Category) (CategoryDescriptor, bool) {
	for _, d := range Categories {
		if d.ID == c {
			return d, true
		}
	}
	return CategoryDescriptor{}, false
}
