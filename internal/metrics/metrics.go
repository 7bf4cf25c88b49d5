package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/SiriusScan/redis-tools/internal/store"
)

// Collector handles metric collection and updates for one process run
type Collector struct {
	registry *prometheus.Registry

	roundTrips   *prometheus.CounterVec
	elements     *prometheus.CounterVec
	keys         *prometheus.CounterVec
	opDuration   *prometheus.HistogramVec
	errorCounter *prometheus.CounterVec
}

// NewCollector creates a collector with its own registry
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		roundTrips: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "redis_tools_round_trips_total",
			Help: "Chunk reads/writes and delete batches issued, by operation and kind",
		}, []string{"operation", "kind"}),
		elements: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "redis_tools_elements_total",
			Help: "Elements copied or removed, by operation and kind",
		}, []string{"operation", "kind"}),
		keys: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "redis_tools_keys_processed_total",
			Help: "Keys finished, by operation and kind",
		}, []string{"operation", "kind"}),
		opDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "redis_tools_operation_duration_seconds",
			Help:    "Duration of top-level operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "status"}),
		errorCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "redis_tools_errors_total",
			Help: "Total number of failed operations",
		}, []string{"operation"}),
	}
}

// RoundTrip increments the round trip counter
func (c *Collector) RoundTrip(op string, kind store.Kind) {
	c.roundTrips.WithLabelValues(op, string(kind)).Inc()
}

// Elements adds n to the element counter
func (c *Collector) Elements(op string, kind store.Kind, n int64) {
	c.elements.WithLabelValues(op, string(kind)).Add(float64(n))
}

// KeyProcessed increments the key counter
func (c *Collector) KeyProcessed(op string, kind store.Kind) {
	c.keys.WithLabelValues(op, string(kind)).Inc()
}

// ObserveOperation records the duration and outcome of a top-level operation
func (c *Collector) ObserveOperation(op string, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failed"
		c.errorCounter.WithLabelValues(op).Inc()
	}
	c.opDuration.WithLabelValues(op, status).Observe(d.Seconds())
}

// Push sends every collected metric to a Pushgateway under job
func (c *Collector) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(c.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	return nil
}
