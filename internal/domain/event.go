package domain

import "time"

// RawEvent is a row of the events table as the store returns it.
type RawEvent struct {
	ID          string     `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Description *string    `db:"description" json:"description"`
	Category    Category   `db:"category" json:"category"`
	Location    string     `db:"location" json:"location"`
	Latitude    *float64   `db:"latitude" json:"latitude"`
	Longitude   *float64   `db:"longitude" json:"longitude"`
	StartTime   *time.Time `db:"start_time" json:"start_time"`
	EndTime     *time.Time `db:"end_time" json:"end_time"`
	ImageURL    *string    `db:"image_url" json:"image_url"`
	SourceURL   string     `db:"source_url" json:"source_url"`
	ClubName    *string    `db:"club_name" json:"club_name"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	ScrapedAt   time.Time  `db:"scraped_at" json:"scraped_at"`
}

// Event is a display-ready event. ImageURL is never empty and the
// coordinates are always set, either from the row or synthesized.
type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Category    Category   `json:"category"`
	Location    string     `json:"location"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	Synthesized bool       `json:"synthesized_coordinates"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	ImageURL    string     `json:"image_url"`
	SourceURL   string     `json:"source_url"`
	ClubName    *string    `json:"club_name"`
	CreatedAt   time.Time  `json:"created_at"`
	ScrapedAt   time.Time  `json:"scraped_at"`
}

// ScrapedEvent is an event extracted by an ingestion source, before it has
// an id or a created_at.
type ScrapedEvent struct {
	SourceID    string
	Title       string
	Description *string
	Category    Category
	Location    string
	Latitude    *float64
	Longitude   *float64
	StartTime   *time.Time
	EndTime     *time.Time
	ImageURL    *string
	SourceURL   string
	ClubName    *string
	ScrapedAt   time.Time
}
