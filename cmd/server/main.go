package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/ReadLaterSync/cmd/server/factory"
	"github.com/ReadLaterSync/internal/app"
	"github.com/ReadLaterSync/internal/infra/tracing"
	transport "github.com/ReadLaterSync/internal/transport/http"
	"github.com/ReadLaterSync/pkg/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	fx.New(
		fx.Provide(
			config.Load,

			// Read-later API client
			factory.NewAPIClient,
			factory.NewDecoder,
			factory.NewItemSource,
			factory.NewSavedQueries,

			// Infrastructure
			factory.NewMongoClient,
			factory.NewMongoRepository,
			fx.Annotate(
				factory.NewMainKafkaProducer,
				fx.ResultTags(`name:"main_producer"`),
			),
			fx.Annotate(
				factory.NewDLQProducer,
				fx.ResultTags(`name:"dlq_producer"`),
			),
			fx.Annotate(
				factory.NewKafkaConsumer,
				fx.ParamTags(``, `name:"dlq_producer"`, ``),
			),
			factory.NewNotifier,
			fx.Annotate(
				factory.NewEventProducer,
				fx.ParamTags(`name:"main_producer"`),
			),

			// Services
			factory.NewMirrorService,
			factory.NewNotifySyncService,

			// Ops HTTP server
			transport.NewHTTPServer,
		),
		fx.Invoke(
			SetupTracer,
			WaitForReady,
			RegisterHooks,
			StartServer,
		),
	).Run()
}

func RegisterHooks(lc fx.Lifecycle, mirror *app.MirrorService, notifySync *app.NotifySyncService) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go mirror.Start(ctx)
			notifySync.Start(ctx)
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			return nil
		},
	})
}

func SetupTracer(lc fx.Lifecycle, cfg *config.Config) error {
	if !cfg.TracingEnabled {
		slog.Info("Tracing disabled")
		return nil
	}

	shutdown, err := tracing.InitTracer(context.Background(), cfg.ServiceName)
	if err != nil {
		slog.Error("Failed to initialize tracer", "error", err)
		return err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Info("Shutting down tracer provider")
			return shutdown(ctx)
		},
	})
	return nil
}

// WaitForReady blocks until MongoDB, Kafka and the API are reachable.
func WaitForReady(cfg *config.Config, mongoClient *mongo.Client) error {
	waiter := app.NewReadinessWaiter(
		mongoClient,
		cfg.KafkaBrokers,
		cfg.KafkaTopic,
		cfg.APIBaseURL,
	)
	return waiter.WaitForDependencies(context.Background())
}

func StartServer(lc fx.Lifecycle, server *http.Server) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				slog.Info("Starting ops server", "address", server.Addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					slog.Error("HTTP server failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})
}
