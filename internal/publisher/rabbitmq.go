package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"bevents/internal/domain"
)

// RabbitMQ announces newly ingested events on a durable direct exchange.
type RabbitMQ struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
	logger     *slog.Logger
}

type Config struct {
	URL        string
	Exchange   string
	RoutingKey string
	QueueName  string
}

func NewRabbitMQ(cfg Config, logger *slog.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareTopology(ch, cfg); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger = logger.With("component", "publisher")
	logger.Info("connected to rabbitmq",
		"exchange", cfg.Exchange,
		"queue", cfg.QueueName,
		"routing_key", cfg.RoutingKey,
	)

	return &RabbitMQ{
		conn:       conn,
		channel:    ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		logger:     logger,
	}, nil
}

// declareTopology makes sure the exchange and the event feed queue exist
// and are bound.
func declareTopology(ch *amqp.Channel, cfg Config) error {
	if err := ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(cfg.QueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, cfg.RoutingKey, cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// ActionCreate is the only action emitted today: events are never updated
// in place after ingestion.
const ActionCreate = "create"

// EventMessage is the JSON body of a published event.
type EventMessage struct {
	Action    string       `json:"action"`
	Event     EventPayload `json:"event"`
	Timestamp time.Time    `json:"timestamp"`
}

// EventPayload is the stored event as consumers see it.
type EventPayload struct {
	ID          string          `json:"id"`
	SourceID    string          `json:"source_id"`
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	Category    domain.Category `json:"category"`
	Location    string          `json:"location"`
	Latitude    *float64        `json:"latitude,omitempty"`
	Longitude   *float64        `json:"longitude,omitempty"`
	StartTime   *time.Time      `json:"start_time,omitempty"`
	EndTime     *time.Time      `json:"end_time,omitempty"`
	ImageURL    *string         `json:"image_url,omitempty"`
	SourceURL   string          `json:"source_url"`
	ClubName    *string         `json:"club_name,omitempty"`
	ScrapedAt   time.Time       `json:"scraped_at"`
}

// NewEventMessage builds the message announcing a newly stored event.
func NewEventMessage(id string, event *domain.ScrapedEvent, now time.Time) EventMessage {
	return EventMessage{
		Action: ActionCreate,
		Event: EventPayload{
			ID:          id,
			SourceID:    event.SourceID,
			Title:       event.Title,
			Description: event.Description,
			Category:    event.Category,
			Location:    event.Location,
			Latitude:    event.Latitude,
			Longitude:   event.Longitude,
			StartTime:   event.StartTime,
			EndTime:     event.EndTime,
			ImageURL:    event.ImageURL,
			SourceURL:   event.SourceURL,
			ClubName:    event.ClubName,
			ScrapedAt:   event.ScrapedAt,
		},
		Timestamp: now.UTC(),
	}
}

func (r *RabbitMQ) Publish(ctx context.Context, id string, event *domain.ScrapedEvent) error {
	body, err := json.Marshal(NewEventMessage(id, event, time.Now()))
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = r.channel.PublishWithContext(
		ctx,
		r.exchange,
		r.routingKey,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    id,
			Type:         "event." + ActionCreate,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	r.logger.Debug("published event",
		"id", id,
		"category", event.Category,
	)

	return nil
}

func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
