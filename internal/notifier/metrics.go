package notifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notification_service",
			Subsystem: "kafka_consumer",
			Name:      "events_processed_total",
			Help:      "Total number of successfully processed order events",
		},
		[]string{"event_type"},
	)

	eventsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "notification_service",
			Subsystem: "kafka_consumer",
			Name:      "events_failed_total",
			Help:      "Total number of failed event processing attempts",
		},
	)

	eventsDLQ = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "notification_service",
			Subsystem: "kafka_consumer",
			Name:      "events_dlq_total",
			Help:      "Total number of events written to DLQ",
		},
	)

	eventsDuplicate = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "notification_service",
			Subsystem: "kafka_consumer",
			Name:      "events_duplicate_total",
			Help:      "Total number of duplicate events skipped by eventId",
		},
	)

	processingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "notification_service",
			Subsystem: "kafka_consumer",
			Name:      "event_processing_duration_seconds",
			Help:      "Histogram of event processing durations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)
)
