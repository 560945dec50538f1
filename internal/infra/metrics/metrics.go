package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of requests sent to the read-later API",
		},
		[]string{"method", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of read-later API requests, retries included",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	PreviewPicturesResolved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "preview_pictures_resolved_total",
			Help: "Number of relative preview picture URIs made absolute",
		},
	)

	ItemsFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "items_fetched_total",
			Help: "The total number of items fetched per saved query",
		},
		[]string{"query", "status"},
	)

	ItemsUnchangedSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "items_unchanged_skipped_total",
			Help: "The total number of items not republished because their content hash matched",
		},
		[]string{"query"},
	)

	MirrorRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mirror_run_duration_seconds",
			Help:    "Duration of one mirror run for a saved query",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	ItemsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "items_published_total",
			Help: "Total number of changed items published to Kafka",
		},
		[]string{"query"},
	)

	PublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "publish_errors_total",
			Help: "Total number of failed Kafka batch publishes",
		},
		[]string{"query"},
	)

	WorkerActiveCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_active_count",
			Help: "Number of workers currently processing jobs",
		},
	)

	DLQMessagesPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dlq_messages_published_total",
			Help: "Total number of messages published to DLQ",
		},
	)

	NotifyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "notify_duration_seconds",
			Help:    "Duration of downstream item notification",
			Buckets: prometheus.DefBuckets,
		},
	)

	NotifyErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notify_errors_total",
			Help: "Total number of failed item notifications",
		},
	)

	NotifySuccess = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notify_items_processed_total",
			Help: "Total number of items successfully handed to the notifier",
		},
	)
)
