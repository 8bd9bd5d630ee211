// Package events publishes run-completed notifications to Kafka so
// downstream curation tooling can react to failed validations without
// polling the API.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// RunCompleted is the event emitted after every validation run.
type RunCompleted struct {
	RunID       string         `json:"run_id"`
	Pass        bool           `json:"pass"`
	Counts      map[string]int `json:"counts"`
	CompletedAt time.Time      `json:"completed_at"`
}

// KafkaPublisher produces RunCompleted events to a single topic.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafkaPublisher connects to the brokers. The caller owns Close.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaPublisher{client: client, topic: topic, logger: logger}, nil
}

// PublishRunCompleted produces the event synchronously; a publish failure is
// reported to the caller but must never fail the validation run itself.
func (p *KafkaPublisher) PublishRunCompleted(ctx context.Context, event RunCompleted) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal run-completed event: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.RunID),
		Value: value,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce run-completed event: %w", err)
	}
	p.logger.DebugContext(ctx, "published run-completed event",
		"run_id", event.RunID,
		"topic", p.topic,
	)
	return nil
}

func (p *KafkaPublisher) Close() {
	p.client.Close()
}
