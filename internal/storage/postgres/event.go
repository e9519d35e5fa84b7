package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"bevents/internal/domain"
)

const eventColumns = `id, title, description, category, location, latitude, longitude,
	start_time, end_time, image_url, source_url, club_name, created_at, scraped_at`

type EventStore struct {
	db *sqlx.DB
}

func NewEventStore(db *sqlx.DB) *EventStore {
	return &EventStore{db: db}
}

// List returns every event, newest first.
func (s *EventStore) List(ctx context.Context) ([]domain.RawEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY created_at DESC`

	events := []domain.RawEvent{}
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &events, query); err != nil {
		return nil, fmt.Errorf("select events: %w", err)
	}
	return events, nil
}

// ListRecent returns at most limit events, newest first.
func (s *EventStore) ListRecent(ctx context.Context, limit int) ([]domain.RawEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY created_at DESC LIMIT $1`

	events := []domain.RawEvent{}
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &events, query, limit); err != nil {
		return nil, fmt.Errorf("select recent events: %w", err)
	}
	return events, nil
}

func (s *EventStore) Insert(ctx context.Context, event *domain.ScrapedEvent) (string, error) {
	query := `
		INSERT INTO events (
			title, description, category, location, latitude, longitude,
			start_time, end_time, image_url, source_url, club_name, scraped_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
		RETURNING id`

	var id string
	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		event.Title,
		event.Description,
		string(event.Category),
		event.Location,
		event.Latitude,
		event.Longitude,
		event.StartTime,
		event.EndTime,
		event.ImageURL,
		event.SourceURL,
		event.ClubName,
		event.ScrapedAt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert event: %w", err)
	}

	return id, nil
}

// ExistsByTitleAndStart reports whether an event with the same title and
// start time is stored. A nil start only matches rows without one.
func (s *EventStore) ExistsByTitleAndStart(ctx context.Context, title string, start *time.Time) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM events WHERE title = $1 AND start_time IS NOT DISTINCT FROM $2
	)`

	var exists bool
	if err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &exists, query, title, start); err != nil {
		return false, fmt.Errorf("check event exists: %w", err)
	}
	return exists, nil
}
