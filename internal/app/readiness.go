package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"time"

	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ReadinessWaiter blocks startup until the mirror's dependencies answer.
type ReadinessWaiter struct {
	mongoClient  *mongo.Client
	brokers      []string
	topic        string
	apiBaseURL   string
	pollInterval time.Duration
}

func NewReadinessWaiter(mongoClient *mongo.Client, brokers []string, topic, apiBaseURL string) *ReadinessWaiter {
	return &ReadinessWaiter{
		mongoClient:  mongoClient,
		brokers:      brokers,
		topic:        topic,
		apiBaseURL:   apiBaseURL,
		pollInterval: 2 * time.Second,
	}
}

func (w *ReadinessWaiter) WaitForDependencies(ctx context.Context) error {
	if err := w.waitFor(ctx, "MongoDB", w.checkMongo); err != nil {
		return err
	}
	if err := w.waitFor(ctx, "Kafka", w.checkKafka); err != nil {
		return err
	}
	return w.waitFor(ctx, "read-later API", w.checkAPI)
}

// waitFor polls check until it succeeds or ctx is done.
func (w *ReadinessWaiter) waitFor(ctx context.Context, name string, check func(context.Context) error) error {
	slog.Info("Waiting for dependency", "dependency", name)
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := check(ctx); err != nil {
				slog.Warn("Dependency not ready yet", "dependency", name, "error", err)
				continue
			}
			slog.Info("Dependency is ready", "dependency", name)
			return nil
		}
	}
}

func (w *ReadinessWaiter) checkMongo(ctx context.Context) error {
	return w.mongoClient.Ping(ctx, readpref.Primary())
}

// checkAPI only verifies the API host accepts TCP connections.
func (w *ReadinessWaiter) checkAPI(_ context.Context) error {
	u, err := url.Parse(w.apiBaseURL)
	if err != nil {
		return fmt.Errorf("invalid API base URL: %w", err)
	}
	host := u.Host
	if u.Port() == "" {
		port := "80"
		if u.Scheme == "https" {
			port = "443"
		}
		host = net.JoinHostPort(u.Hostname(), port)
	}
	conn, err := net.DialTimeout("tcp", host, 2*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to API %s: %w", host, err)
	}
	return conn.Close()
}

// checkKafka dials every broker, then asks the first one for the topic's
// partitions.
func (w *ReadinessWaiter) checkKafka(_ context.Context) error {
	if len(w.brokers) == 0 {
		return fmt.Errorf("no brokers configured")
	}
	for _, broker := range w.brokers {
		conn, err := net.DialTimeout("tcp", broker, 2*time.Second)
		if err != nil {
			return fmt.Errorf("failed to connect to broker %s: %w", broker, err)
		}
		_ = conn.Close()
	}

	conn, err := kafka.Dial("tcp", w.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to dial kafka: %w", err)
	}
	defer func() {
		_ = conn.Close()
	}()

	partitions, err := conn.ReadPartitions(w.topic)
	if err != nil {
		return fmt.Errorf("failed to read partitions for topic %s: %w", w.topic, err)
	}
	if len(partitions) == 0 {
		return fmt.Errorf("topic %s has no partitions", w.topic)
	}
	return nil
}
