// Package factory provides the fx constructors for the mirror's infrastructure.
package factory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ReadLaterSync/internal/infra/queue"
	"github.com/ReadLaterSync/pkg/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
)

// NewMongoClient connects to MongoDB and disconnects on shutdown.
func NewMongoClient(lc fx.Lifecycle, cfg *config.Config) (*mongo.Client, error) {
	if cfg.MongoURI == "" {
		return nil, errors.New("mongo URI not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().ApplyURI(cfg.MongoURI).SetAppName(cfg.ServiceName)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: client.Disconnect,
	})
	return client, nil
}

// NewMainKafkaProducer publishes changed items to the main topic.
func NewMainKafkaProducer(cfg *config.Config, lc fx.Lifecycle) (*queue.KafkaProducer, error) {
	return newProducer(cfg, cfg.KafkaTopic, lc)
}

// NewDLQProducer publishes items the notifier rejected.
func NewDLQProducer(cfg *config.Config, lc fx.Lifecycle) (*queue.KafkaProducer, error) {
	return newProducer(cfg, cfg.KafkaDLQTopic, lc)
}

func newProducer(cfg *config.Config, topic string, lc fx.Lifecycle) (*queue.KafkaProducer, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("kafka brokers not configured")
	}
	if topic == "" {
		return nil, errors.New("kafka topic not configured")
	}

	producer := queue.NewKafkaProducer(cfg.KafkaBrokers, topic)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return producer.Close()
		},
	})
	return producer, nil
}

// NewKafkaConsumer reads the main topic, dead-lettering through dlqProducer.
func NewKafkaConsumer(
	cfg *config.Config,
	dlqProducer *queue.KafkaProducer,
	lc fx.Lifecycle,
) (*queue.KafkaConsumer, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("kafka brokers not configured")
	}
	if cfg.KafkaTopic == "" {
		return nil, errors.New("kafka topic not configured")
	}

	consumer := queue.NewKafkaConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, dlqProducer)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return consumer.Close()
		},
	})
	return consumer, nil
}
