// Package metrics exposes Prometheus instruments for the HTTP API and the
// realtime feed. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tornamate"

type Metrics struct {
	registry     *prometheus.Registry
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	published    *prometheus.CounterVec
}

// New registers the instruments on registry. Process and Go runtime
// collectors are added as well.
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "messages_published_total",
			Help:      "Realtime messages published by type.",
		}, []string{"type"}),
	}
	registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.published,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records one observation per request. The route label is the
// matched chi pattern so path parameters do not explode cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Publisher matches the realtime notifier used by the services.
type Publisher interface {
	Publish(tournamentID, messageType string, payload interface{})
}

type countingPublisher struct {
	next    Publisher
	counter *prometheus.CounterVec
}

func (p countingPublisher) Publish(tournamentID, messageType string, payload interface{}) {
	p.counter.WithLabelValues(messageType).Inc()
	p.next.Publish(tournamentID, messageType, payload)
}

// CountPublished wraps next so every published message is counted by type.
func (m *Metrics) CountPublished(next Publisher) Publisher {
	if m == nil {
		return next
	}
	return countingPublisher{next: next, counter: m.published}
}

// ObserveClients exposes the current websocket client count as a gauge.
func (m *Metrics) ObserveClients(count func() int) {
	if m == nil {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "realtime",
		Name:      "websocket_clients",
		Help:      "Connected websocket clients across all tournament rooms.",
	}, func() float64 { return float64(count()) }))
}
