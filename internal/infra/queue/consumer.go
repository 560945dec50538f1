package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/ReadLaterSync/internal/domain"
	"github.com/ReadLaterSync/internal/infra/metrics"
	"github.com/segmentio/kafka-go"
)

type KafkaConsumer struct {
	reader      *kafka.Reader
	dlqProducer domain.EventProducer
}

func NewKafkaConsumer(brokers []string, topic string, groupID string, dlqProducer domain.EventProducer) *KafkaConsumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	slog.Info("Kafka Consumer initialized", "brokers", brokers, "topic", topic, "group", groupID)
	return &KafkaConsumer{
		reader:      r,
		dlqProducer: dlqProducer,
	}
}

type MessageHandler func(ctx context.Context, item *domain.Item) error

// Start reads until ctx is cancelled or the reader fails. Items the handler
// rejects go to the dead letter topic.
func (c *KafkaConsumer) Start(ctx context.Context, handler MessageHandler) {
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				slog.Error("Error reading kafka message", "error", err)
			}
			return
		}

		item, err := decodeMessage(m)
		if err != nil {
			slog.Error("Error unmarshaling item", "offset", m.Offset, "error", err)
			continue
		}

		slog.Debug("Received item from Kafka", "item_id", item.ID, "partition", m.Partition, "event_id", eventID(m))

		if err := handler(ctx, item); err != nil {
			slog.Error("Error handling item event", "item_id", item.ID, "error", err)
			c.deadLetter(ctx, item)
		}
	}
}

func decodeMessage(m kafka.Message) (*domain.Item, error) {
	var item domain.Item
	if err := json.Unmarshal(m.Value, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *KafkaConsumer) deadLetter(ctx context.Context, item *domain.Item) {
	if c.dlqProducer == nil {
		return
	}
	slog.Info("Publishing failed event to DLQ", "item_id", item.ID)
	if err := c.dlqProducer.Publish(ctx, item); err != nil {
		slog.Error("Failed to publish to DLQ", "item_id", item.ID, "error", err)
		return
	}
	metrics.DLQMessagesPublished.Inc()
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}

func eventID(m kafka.Message) string {
	for _, h := range m.Headers {
		if h.Key == eventIDHeader {
			return string(h.Value)
		}
	}
	return ""
}
