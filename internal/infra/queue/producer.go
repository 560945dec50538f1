package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/ReadLaterSync/internal/domain"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const eventIDHeader = "event-id"

type KafkaProducer struct {
	writer *kafka.Writer
}

var _ domain.EventProducer = (*KafkaProducer)(nil)

func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{}, // same item id, same partition
	}
	slog.Info("Kafka Producer initialized", "brokers", brokers, "topic", topic)
	return &KafkaProducer{writer: w}
}

func (p *KafkaProducer) Publish(ctx context.Context, item *domain.Item) error {
	msg, err := newMessage(item)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		slog.Error("Failed to write to kafka", "item_id", item.ID, "error", err)
		return err
	}

	slog.Debug("Published item to Kafka", "item_id", item.ID)
	return nil
}

func (p *KafkaProducer) PublishBatch(ctx context.Context, items []domain.Item) error {
	if len(items) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(items))
	for i := range items {
		msg, err := newMessage(&items[i])
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		slog.Error("Failed to write batch to kafka", "count", len(msgs), "error", err)
		return err
	}

	slog.Debug("Published item batch to Kafka", "count", len(msgs))
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

func newMessage(item *domain.Item) (kafka.Message, error) {
	payload, err := json.Marshal(item)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(strconv.Itoa(item.ID)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: eventIDHeader, Value: []byte(uuid.NewString())},
		},
	}, nil
}
