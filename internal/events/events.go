package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/rentops-lab/rentops/internal/core/booking"
	"github.com/rentops-lab/rentops/internal/metrics"
)

const TypeCommitmentCreated = "commitment.created"

// Event is the envelope written to the broker. Data holds the type-specific payload.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Key        string      `json:"-"`
	Data       interface{} `json:"data"`
}

// CommitmentPayload is the data of a commitment.created event.
type CommitmentPayload struct {
	CommitmentID string `json:"commitment_id"`
	UnitID       string `json:"unit_id"`
	Kind         string `json:"kind"`
	Status       string `json:"status"`
	Label        string `json:"label,omitempty"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
}

// CommitmentCreated builds the event for a newly stored commitment, keyed by unit so
// that one unit's events stay ordered within a partition.
func CommitmentCreated(c booking.Commitment, now time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       TypeCommitmentCreated,
		OccurredAt: now.UTC(),
		Key:        c.UnitID,
		Data: CommitmentPayload{
			CommitmentID: c.ID,
			UnitID:       c.UnitID,
			Kind:         string(c.Kind),
			Status:       string(c.Status),
			Label:        c.Label,
			StartDate:    c.Interval.Start.String(),
			EndDate:      c.Interval.End.String(),
		},
	}
}

// Publisher delivers domain events.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// Noop discards every event. Used when events are disabled.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

// KafkaPublisher writes events to one topic through a synchronous producer.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	metrics  *metrics.Metrics
}

// NewKafkaPublisher connects an idempotent producer that waits for all in-sync replicas.
func NewKafkaPublisher(brokers []string, topic, clientID string, m *metrics.Metrics) (*KafkaPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.ClientID = clientID
	cfg.Version = sarama.V2_1_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Producer.Return.Successes = true
	cfg.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return NewKafkaPublisherFromProducer(producer, topic, m), nil
}

// NewKafkaPublisherFromProducer wraps an existing producer.
func NewKafkaPublisherFromProducer(producer sarama.SyncProducer, topic string, m *metrics.Metrics) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic, metrics: m}
}

func (p *KafkaPublisher) Publish(ctx context.Context, evt Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		p.metrics.IncEventPublished(evt.Type, "error")
		return fmt.Errorf("marshal event %s: %w", evt.ID, err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(evt.Key),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(evt.Type)},
			{Key: []byte("event_id"), Value: []byte(evt.ID)},
		},
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.metrics.IncEventPublished(evt.Type, "error")
		return fmt.Errorf("send event %s: %w", evt.ID, err)
	}

	p.metrics.IncEventPublished(evt.Type, "ok")
	slog.Debug("[Events] Published event",
		"event_id", evt.ID,
		"type", evt.Type,
		"topic", p.topic,
		"partition", partition,
		"offset", offset,
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	if p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
