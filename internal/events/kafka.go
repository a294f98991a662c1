package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event is the JSON document written to Kafka. Consumers read entity, action and
// resourceId, falling back to the topic name.
type Event struct {
	Entity     string            `json:"entity"`
	Action     string            `json:"action"`
	ResourceID string            `json:"resourceId"`
	Topic      string            `json:"topic"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Data       any               `json:"data,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// KafkaPublisher writes events to <prefix>.<entity>.<action>.
type KafkaPublisher struct {
	writer *kafka.Writer
	prefix string
}

func NewKafkaPublisher(brokers []string, prefix string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			BatchTimeout:           50 * time.Millisecond,
		},
		prefix: prefix,
	}
}

// TopicFor builds the topic name for an entity/action pair.
func TopicFor(prefix, entity, action string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{prefix, entity, action} {
		if p = strings.Trim(strings.TrimSpace(p), "."); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

// Encode fills the derived fields of ev and returns the Kafka message for it.
func Encode(prefix string, ev Event) (kafka.Message, error) {
	ev.Topic = TopicFor(prefix, ev.Entity, ev.Action)
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	value, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode event: %w", err)
	}
	return kafka.Message{
		Topic: ev.Topic,
		Key:   []byte(ev.ResourceID),
		Value: value,
		Time:  ev.Timestamp,
	}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	msg, err := Encode(p.prefix, ev)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
