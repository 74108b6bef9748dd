package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "freight_broker"

// Collector owns a private registry so tests and multiple servers in one
// process never collide on the default registerer.
type Collector struct {
	registry *prometheus.Registry

	WebhookEvents        *prometheus.CounterVec
	WebhookDuration      *prometheus.HistogramVec
	StaleRefunds         prometheus.Counter
	LifecycleTransitions *prometheus.CounterVec
	LedgerPruned         prometheus.Counter
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		registry: reg,
		WebhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconciler",
			Name:      "events_total",
			Help:      "Payment webhook deliveries by outcome",
		}, []string{"outcome", "charge_status"}),
		WebhookDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "reconciler",
			Name:      "event_duration_seconds",
			Help:      "Time spent reconciling one payment webhook delivery",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		StaleRefunds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconciler",
			Name:      "stale_refunds_total",
			Help:      "Refunds applied for a charge other than the one backing the current period",
		}),
		LifecycleTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lifecycle_transitions_total",
			Help:      "Freight and subscription transitions by result",
		}, []string{"aggregate", "transition", "result"}),
		LedgerPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "pruned_entries_total",
			Help:      "Idempotency ledger entries removed by retention",
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status_code"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		c.WebhookEvents,
		c.WebhookDuration,
		c.StaleRefunds,
		c.LifecycleTransitions,
		c.LedgerPruned,
		c.HTTPRequestsTotal,
		c.HTTPRequestDuration,
	)

	return c
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) RecordWebhook(outcome, chargeStatus string, duration time.Duration) {
	c.WebhookEvents.WithLabelValues(outcome, chargeStatus).Inc()
	c.WebhookDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (c *Collector) RecordStaleRefund() {
	c.StaleRefunds.Inc()
}

func (c *Collector) RecordTransition(aggregate, transition string, err error) {
	result := "ok"
	if err != nil {
		result = "rejected"
	}
	c.LifecycleTransitions.WithLabelValues(aggregate, transition, result).Inc()
}

func (c *Collector) RecordLedgerPruned(n int64) {
	c.LedgerPruned.Add(float64(n))
}

func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	c.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
