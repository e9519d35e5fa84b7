package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"bevents/internal/domain"
)

type EventStore interface {
	List(ctx context.Context) ([]domain.RawEvent, error)
	ListRecent(ctx context.Context, limit int) ([]domain.RawEvent, error)
	Insert(ctx context.Context, event *domain.ScrapedEvent) (string, error)
	ExistsByTitleAndStart(ctx context.Context, title string, start *time.Time) (bool, error)
}

type SyncStateStore interface {
	Get(ctx context.Context, sourceID string) (*domain.SyncState, error)
	Update(ctx context.Context, state *domain.SyncState) error
}

type Source interface {
	ID() string
	Name() string
	FetchEvents(ctx context.Context) ([]domain.ScrapedEvent, error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Publish(ctx context.Context, id string, event *domain.ScrapedEvent) error
	Close() error
}

type Metrics interface {
	ObserveSync(stats *domain.SyncStats)
	SyncFailed(sourceID string)
}
