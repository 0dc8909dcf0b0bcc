// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the interface handlers and middleware record through.
type Recorder interface {
	RecordRequest(method, route string, status int, duration time.Duration)
	RecordLogin(provider string)
	RecordGroupCreated()
	RecordGroupDeleted()
}

// Collector implements Recorder on a Prometheus registry.
type Collector struct {
	requests      *prometheus.CounterVec
	duration      prometheus.Histogram
	logins        *prometheus.CounterVec
	groupsCreated prometheus.Counter
	groupsDeleted prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gather_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gather_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gather_logins_total",
			Help: "Successful logins by identity provider.",
		}, []string{"provider"}),
		groupsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gather_groups_created_total",
			Help: "Groups created.",
		}),
		groupsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gather_groups_deleted_total",
			Help: "Groups deleted.",
		}),
	}

	reg.MustRegister(c.requests, c.duration, c.logins, c.groupsCreated, c.groupsDeleted)
	return c
}

// RecordRequest records one served HTTP request.
func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.duration.Observe(duration.Seconds())
}

// RecordLogin records a completed login.
func (c *Collector) RecordLogin(provider string) {
	c.logins.WithLabelValues(provider).Inc()
}

// RecordGroupCreated records a group insertion.
func (c *Collector) RecordGroupCreated() {
	c.groupsCreated.Inc()
}

// RecordGroupDeleted records a group deletion.
func (c *Collector) RecordGroupDeleted() {
	c.groupsDeleted.Inc()
}

// Handler returns the scrape handler for the given gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Noop is a Recorder that discards everything, for tests.
type Noop struct{}

func (Noop) RecordRequest(string, string, int, time.Duration) {}
func (Noop) RecordLogin(string)                               {}
func (Noop) RecordGroupCreated()                              {}
func (Noop) RecordGroupDeleted()                              {}
