package service

import (
	"context"
	"log/slog"

	"bevents/internal/discovery"
	"bevents/internal/domain"
)

// EventRepository is the read side of the events table. It returns events
// already normalized for display.
type EventRepository struct {
	events     EventStore
	normalizer *discovery.Normalizer
	logger     *slog.Logger
}

func NewEventRepository(events EventStore, normalizer *discovery.Normalizer, logger *slog.Logger) *EventRepository {
	return &EventRepository{
		events:     events,
		normalizer: normalizer,
		logger:     logger.With("component", "event_repository"),
	}
}

// FetchAll returns every event, newest first. Failures are reported as
// *domain.FetchError.
func (r *EventRepository) FetchAll(ctx context.Context) ([]domain.Event, error) {
	raw, err := r.events.List(ctx)
	if err != nil {
		return nil, &domain.FetchError{Op: "all", Err: err}
	}
	return r.normalizer.NormalizeAll(raw), nil
}

// FetchRecent returns at most limit events, newest first.
func (r *EventRepository) FetchRecent(ctx context.Context, limit int) ([]domain.Event, error) {
	raw, err := r.events.ListRecent(ctx, limit)
	if err != nil {
		return nil, &domain.FetchError{Op: "recent", Err: err}
	}
	return r.normalizer.NormalizeAll(raw), nil
}

// Load is FetchAll for screens: a failed fetch is logged and shown as an
// empty list.
func (r *EventRepository) Load(ctx context.Context) []domain.Event {
	events, err := r.FetchAll(ctx)
	if err != nil {
		r.logger.Error("failed to load events", "error", err)
		return []domain.Event{}
	}
	return events
}

// LoadRecent is FetchRecent with the same degradation as Load.
func (r *EventRepository) LoadRecent(ctx context.Context, limit int) []domain.Event {
	events, err := r.FetchRecent(ctx, limit)
	if err != nil {
		r.logger.Error("failed to load recent events", "error", err)
		return []domain.Event{}
	}
	return events
}
