package client

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts the exchanges of one or more clients.
type Metrics struct {
	registry *prometheus.Registry

	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	bytes      *prometheus.CounterVec
	exceptions *prometheus.CounterVec
}

// NewMetrics creates metrics on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adt_requests_total",
				Help: "ADT requests by method and status code.",
			},
			[]string{"method", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "adt_request_duration_seconds",
				Help:    "Round-trip time of ADT requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		bytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adt_body_bytes_total",
				Help: "Body bytes sent and received.",
			},
			[]string{"direction"},
		),
		exceptions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adt_exceptions_total",
				Help: "Exceptions returned by the service, by type.",
			},
			[]string{"type"},
		),
	}
	m.registry.MustRegister(m.requests, m.duration, m.bytes, m.exceptions)
	return m
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteFile writes the metrics in the text exposition format, for the
// node exporter textfile collector.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) observe(method string, status int, d time.Duration, sent, received int) {
	if m == nil {
		return
	}
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(method, code).Inc()
	m.duration.WithLabelValues(method).Observe(d.Seconds())
	m.bytes.WithLabelValues("out").Add(float64(sent))
	m.bytes.WithLabelValues("in").Add(float64(received))
}

func (m *Metrics) exception(excType string) {
	if m == nil || excType == "" {
		return
	}
	m.exceptions.WithLabelValues(excType).Inc()
}
