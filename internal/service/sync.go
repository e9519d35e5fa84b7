package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bevents/internal/categorize"
	"bevents/internal/config"
	"bevents/internal/domain"
)

var errDuplicate = errors.New("duplicate event")

type SyncService struct {
	source    Source
	events    EventStore
	syncState SyncStateStore
	txManager TransactionManager
	publisher Publisher
	metrics   Metrics
	logger    *slog.Logger
	config    config.SyncConfig
}

// NewSyncService wires one source to the stores. publisher and metrics may
// be nil.
func NewSyncService(
	source Source,
	events EventStore,
	syncState SyncStateStore,
	txManager TransactionManager,
	publisher Publisher,
	metrics Metrics,
	logger *slog.Logger,
	cfg config.SyncConfig,
) *SyncService {
	return &SyncService{
		source:    source,
		events:    events,
		syncState: syncState,
		txManager: txManager,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.With("source", source.ID()),
		config:    cfg,
	}
}

func (s *SyncService) Sync(ctx context.Context) (*domain.SyncStats, error) {
	startTime := time.Now()
	s.logger.Info("starting sync", "source_name", s.source.Name())

	events, err := s.source.FetchEvents(ctx)
	if err != nil {
		if s.metrics != nil {
			s.metrics.SyncFailed(s.source.ID())
		}
		return nil, fmt.Errorf("fetch events: %w", err)
	}

	s.logger.Info("fetched events from source", "count", len(events))

	stats := &domain.SyncStats{
		SourceID:   s.source.ID(),
		Fetched:    len(events),
		Categories: make(map[domain.Category]int),
	}

	for i := range events {
		event := &events[i]
		s.prepare(event)

		if event.Title == "" {
			stats.Skipped++
			continue
		}

		id, err := s.saveEvent(ctx, event)
		if errors.Is(err, errDuplicate) {
			stats.Skipped++
			continue
		}
		if err != nil {
			s.logger.Warn("failed to save event", "title", event.Title, "error", err)
			stats.Errors++
			continue
		}

		stats.New++
		stats.Categories[event.Category]++

		if s.publisher != nil {
			if err := s.publisher.Publish(ctx, id, event); err != nil {
				s.logger.Warn("failed to publish event", "id", id, "error", err)
				stats.Errors++
			} else {
				stats.Published++
			}
		}
	}

	if err := s.updateSyncState(ctx, stats); err != nil {
		if s.metrics != nil {
			s.metrics.SyncFailed(s.source.ID())
		}
		return stats, fmt.Errorf("update sync state: %w", err)
	}

	stats.Duration = time.Since(startTime)

	if s.metrics != nil {
		s.metrics.ObserveSync(stats)
	}

	s.logger.Info("sync completed",
		"new", stats.New,
		"skipped", stats.Skipped,
		"errors", stats.Errors,
		"published", stats.Published,
		"duration", stats.Duration,
	)

	return stats, nil
}

// prepare trims the text fields to the column limits and fills in a
// missing or unknown category.
func (s *SyncService) prepare(event *domain.ScrapedEvent) {
	event.Title = truncate(strings.TrimSpace(event.Title), s.config.MaxTitle)

	description := ""
	if event.Description != nil {
		description = truncate(strings.TrimSpace(*event.Description), s.config.MaxDescription)
		if description == "" {
			event.Description = nil
		} else {
			event.Description = &description
		}
	}

	if event.SourceID == "" {
		event.SourceID = s.source.ID()
	}
	if !event.Category.Valid() {
		event.Category = categorize.Categorize(event.Title, description)
		s.logger.Debug("categorized event",
			"title", event.Title,
			"category", event.Category,
			"scores", categorize.Scores(event.Title, description),
		)
	}
}

func (s *SyncService) saveEvent(ctx context.Context, event *domain.ScrapedEvent) (string, error) {
	var id string
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		exists, err := s.events.ExistsByTitleAndStart(txCtx, event.Title, event.StartTime)
		if err != nil {
			return fmt.Errorf("check duplicate: %w", err)
		}
		if exists {
			return errDuplicate
		}

		id, err = s.events.Insert(txCtx, event)
		if err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
		return nil
	})
	return id, err
}

func (s *SyncService) updateSyncState(ctx context.Context, stats *domain.SyncStats) error {
	state, err := s.syncState.Get(ctx, s.source.ID())
	if err != nil {
		return err
	}

	state.SourceID = s.source.ID()
	state.LastSyncedAt = time.Now()
	state.TotalSynced += int64(stats.New)

	return s.syncState.Update(ctx, state)
}

// truncate cuts s to at most n runes. n <= 0 means no limit.
func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
