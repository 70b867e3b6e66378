// Package metrics collects client-side Prometheus metrics and writes them
// in textfile format when the process exits.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is the metrics surface used by the HTTP client and the session store.
type Recorder interface {
	RecordRequest(method string, statusCode int, duration time.Duration)
	RecordNetworkError(method string)
	RecordAuthFailure(statusCode int)
	RecordLoginRedirect()
	RecordRefresh(success bool)
}

// Collector implements Recorder with Prometheus metrics.
type Collector struct {
	requests       *prometheus.CounterVec
	latency        prometheus.Histogram
	networkErrors  *prometheus.CounterVec
	authFailures   *prometheus.CounterVec
	loginRedirects prometheus.Counter
	refreshes      *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskboard_http_requests_total",
			Help: "API requests by method and response status.",
		}, []string{"method", "status_code"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "taskboard_http_request_duration_seconds",
			Help:    "API request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		networkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskboard_http_network_errors_total",
			Help: "API requests that failed before a response arrived.",
		}, []string{"method"}),
		authFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskboard_auth_failures_total",
			Help: "Responses classified as an invalid session.",
		}, []string{"status_code"}),
		loginRedirects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskboard_login_redirects_total",
			Help: "Navigations to the login route caused by an invalid session.",
		}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskboard_dashboard_refresh_total",
			Help: "Dashboard refreshes by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		c.requests,
		c.latency,
		c.networkErrors,
		c.authFailures,
		c.loginRedirects,
		c.refreshes,
	)

	return c
}

// RecordRequest records one completed request.
func (c *Collector) RecordRequest(method string, statusCode int, duration time.Duration) {
	c.requests.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	c.latency.Observe(duration.Seconds())
}

// RecordNetworkError records a request that got no response.
func (c *Collector) RecordNetworkError(method string) {
	c.networkErrors.WithLabelValues(method).Inc()
}

// RecordAuthFailure records a response detected as an invalid session.
func (c *Collector) RecordAuthFailure(statusCode int) {
	c.authFailures.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordLoginRedirect records a forced navigation to login.
func (c *Collector) RecordLoginRedirect() {
	c.loginRedirects.Inc()
}

// RecordRefresh records the outcome of a dashboard fetch.
func (c *Collector) RecordRefresh(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	c.refreshes.WithLabelValues(result).Inc()
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordRequest(string, int, time.Duration) {}
func (Nop) RecordNetworkError(string)                {}
func (Nop) RecordAuthFailure(int)                    {}
func (Nop) RecordLoginRedirect()                     {}
func (Nop) RecordRefresh(bool)                       {}

// OrNop returns r, or Nop when r is nil.
func OrNop(r Recorder) Recorder {
	if r == nil {
		return Nop{}
	}
	return r
}
