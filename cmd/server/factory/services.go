package factory

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ReadLaterSync/internal/app"
	"github.com/ReadLaterSync/internal/domain"
	"github.com/ReadLaterSync/internal/infra/gateway"
	"github.com/ReadLaterSync/internal/infra/queue"
	"github.com/ReadLaterSync/internal/infra/repository"
	"github.com/ReadLaterSync/pkg/config"
	"go.mongodb.org/mongo-driver/mongo"
)

// NewMongoRepository creates the mirror repository.
func NewMongoRepository(client *mongo.Client, cfg *config.Config) (domain.Repository, error) {
	if cfg.MongoDBName == "" {
		return nil, errors.New("mongo database name not configured")
	}
	if cfg.MongoColl == "" {
		return nil, errors.New("mongo collection name not configured")
	}
	return repository.NewMongoRepository(client, cfg.MongoDBName, cfg.MongoColl)
}

// NewNotifier creates the downstream notifier gateway.
func NewNotifier() domain.Notifier {
	return gateway.NewLogNotifier(slog.Default())
}

// NewEventProducer wraps the Kafka producer as an EventProducer.
func NewEventProducer(p *queue.KafkaProducer) (domain.EventProducer, error) {
	if p == nil {
		return nil, errors.New("kafka producer is nil")
	}
	return p, nil
}

// NewMirrorService creates the mirror service with validation.
func NewMirrorService(
	repo domain.Repository,
	source domain.ItemSource,
	eventProducer domain.EventProducer,
	queries []app.SavedQuery,
	cfg *config.Config,
) (*app.MirrorService, error) {
	if repo == nil {
		return nil, errors.New("repository is nil")
	}
	if source == nil {
		return nil, errors.New("item source is nil")
	}
	if eventProducer == nil {
		return nil, errors.New("event producer is nil")
	}
	if len(queries) == 0 {
		return nil, errors.New("no queries configured")
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("invalid poll interval: %s", cfg.PollInterval)
	}
	if cfg.WorkerPoolSize <= 0 || cfg.WorkerPoolSize > 100 {
		return nil, fmt.Errorf("invalid worker pool size: %d (must be 1-100)", cfg.WorkerPoolSize)
	}

	return app.NewMirrorService(
		repo,
		source,
		eventProducer,
		queries,
		cfg.PollInterval,
		cfg.WorkerPoolSize,
	), nil
}

// NewNotifySyncService creates the notify sync service.
func NewNotifySyncService(consumer *queue.KafkaConsumer, notifier domain.Notifier) (*app.NotifySyncService, error) {
	if consumer == nil {
		return nil, errors.New("kafka consumer is nil")
	}
	if notifier == nil {
		return nil, errors.New("notifier is nil")
	}
	return app.NewNotifySyncService(consumer, notifier), nil
}
