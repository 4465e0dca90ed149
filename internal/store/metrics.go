package store

import "github.com/prometheus/client_golang/prometheus"

var (
	failOpenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "store",
			Name:      "fail_open_total",
			Help:      "Stored collections that could not be parsed and were read as empty",
		},
		[]string{"collection"},
	)

	conflictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "store",
			Name:      "conflicts_total",
			Help:      "Saves rejected because the collection changed since it was loaded",
		},
		[]string{"collection"},
	)

	savesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "store",
			Name:      "saves_total",
			Help:      "Collections written successfully",
		},
		[]string{"collection"},
	)
)

func init() {
	prometheus.MustRegister(failOpenTotal, conflictsTotal, savesTotal)
}
