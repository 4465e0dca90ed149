package database

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// PoolStatser is satisfied by *redis.Client and *redis.ClusterClient.
type PoolStatser interface {
	PoolStats() *redis.PoolStats
}

// PoolStatsCollector implements prometheus.Collector for go-redis connection
// pool metrics.
type PoolStatsCollector struct {
	pool    PoolStatser
	service string

	hits       *prometheus.Desc
	misses     *prometheus.Desc
	timeouts   *prometheus.Desc
	totalConns *prometheus.Desc
	idleConns  *prometheus.Desc
	staleConns *prometheus.Desc
}

// NewPoolStatsCollector creates a collector exporting the pool statistics of
// the given Redis client.
func NewPoolStatsCollector(pool PoolStatser, service string) *PoolStatsCollector {
	labels := []string{"service"}
	return &PoolStatsCollector{
		pool:    pool,
		service: service,
		hits: prometheus.NewDesc(
			"redis_pool_hits_total",
			"Number of times a free connection was found in the pool",
			labels, nil,
		),
		misses: prometheus.NewDesc(
			"redis_pool_misses_total",
			"Number of times a free connection was not found in the pool",
			labels, nil,
		),
		timeouts: prometheus.NewDesc(
			"redis_pool_timeouts_total",
			"Number of times a wait for a connection timed out",
			labels, nil,
		),
		totalConns: prometheus.NewDesc(
			"redis_pool_total_connections",
			"Total number of connections in the pool",
			labels, nil,
		),
		idleConns: prometheus.NewDesc(
			"redis_pool_idle_connections",
			"Number of idle connections in the pool",
			labels, nil,
		),
		staleConns: prometheus.NewDesc(
			"redis_pool_stale_connections_total",
			"Number of stale connections removed from the pool",
			labels, nil,
		),
	}
}

// Describe sends the descriptors of all metrics to the provided channel.
func (c *PoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.timeouts
	ch <- c.totalConns
	ch <- c.idleConns
	ch <- c.staleConns
}

// Collect reads current pool statistics and sends them as Prometheus metrics.
func (c *PoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	stat := c.pool.PoolStats()

	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(stat.Hits), c.service)
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(stat.Misses), c.service)
	ch <- prometheus.MustNewConstMetric(c.timeouts, prometheus.CounterValue, float64(stat.Timeouts), c.service)
	ch <- prometheus.MustNewConstMetric(c.totalConns, prometheus.GaugeValue, float64(stat.TotalConns), c.service)
	ch <- prometheus.MustNewConstMetric(c.idleConns, prometheus.GaugeValue, float64(stat.IdleConns), c.service)
	ch <- prometheus.MustNewConstMetric(c.staleConns, prometheus.CounterValue, float64(stat.StaleConns), c.service)
}

// RegisterPoolMetrics registers a Redis pool collector with reg.
func RegisterPoolMetrics(reg prometheus.Registerer, pool PoolStatser, service string) error {
	return reg.Register(NewPoolStatsCollector(pool, service))
}
