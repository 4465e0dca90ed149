package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	producerMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "kafka_producer_messages_published_total",
			Help:      "Total number of Kafka messages published",
		},
		[]string{"topic"},
	)

	producerPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "kafka_producer_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		},
		[]string{"topic"},
	)

	producerPublishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Name:      "kafka_producer_publish_duration_seconds",
			Help:      "Duration of Kafka publish operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"topic"},
	)
)
