package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the gateway's prometheus collectors. A single instance is
// created in main and shared by the upstream client and the pollers.
type Metrics struct {
	Registry *prometheus.Registry

	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	PollTicks        *prometheus.CounterVec
	PollFailures     *prometheus.CounterVec
	ActivePollers    prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "internflow_upstream_requests_total",
			Help: "Upstream platform API requests by method and outcome.",
		}, []string{"method", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "internflow_upstream_request_seconds",
			Help:    "Upstream platform API request duration.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		PollTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "internflow_poll_ticks_total",
			Help: "Poller fetches by poller name.",
		}, []string{"poller"}),
		PollFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "internflow_poll_failures_total",
			Help: "Failed poller fetches by poller name.",
		}, []string{"poller"}),
		ActivePollers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "internflow_active_pollers",
			Help: "Number of running pollers.",
		}),
	}
	m.Registry.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.PollTicks,
		m.PollFailures,
		m.ActivePollers,
	)
	return m
}
