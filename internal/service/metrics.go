package service

import "github.com/prometheus/client_golang/prometheus"

var (
	casRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "cas_retries_total",
			Help:      "Mutations re-applied after a concurrent write",
		},
		[]string{"collection"},
	)

	notificationsDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "notifications_dropped_total",
			Help:      "Change notifications dropped because a subscriber was not keeping up",
		},
	)

	subscribersGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "storefront",
			Name:      "change_subscribers",
			Help:      "Open change stream subscriptions",
		},
	)
)

func init() {
	prometheus.MustRegister(casRetriesTotal, notificationsDroppedTotal, subscribersGauge)
}
