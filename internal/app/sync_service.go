package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/ReadLaterSync/internal/domain"
	"github.com/ReadLaterSync/internal/infra/metrics"
	"github.com/ReadLaterSync/internal/infra/queue"
)

// NotifySyncService drains the item topic into the notifier gateway.
type NotifySyncService struct {
	consumer *queue.KafkaConsumer
	notifier domain.Notifier
}

func NewNotifySyncService(consumer *queue.KafkaConsumer, notifier domain.Notifier) *NotifySyncService {
	return &NotifySyncService{
		consumer: consumer,
		notifier: notifier,
	}
}

func (s *NotifySyncService) Start(ctx context.Context) {
	slog.Info("Starting notify sync service (Kafka consumer)")
	go s.consumer.Start(ctx, s.handleEvent)
}

func (s *NotifySyncService) handleEvent(ctx context.Context, item *domain.Item) error {
	start := time.Now()
	err := s.notifier.Notify(ctx, item)
	metrics.NotifyDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		slog.Error("Failed to notify item change", "item_id", item.ID, "error", err)
		metrics.NotifyErrors.Inc()
		return err
	}

	metrics.NotifySuccess.Inc()
	return nil
}
