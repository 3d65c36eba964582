// Package metrics exposes the Prometheus collectors of the API.
// All recording methods are safe on a nil *Collector.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const Namespace = "habits"

type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	Completions    *prometheus.CounterVec
	FreezesExpired prometheus.Counter
	RemindersSent  prometheus.Counter

	WorkerJobs *prometheus.CounterVec

	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	RateLimited *prometheus.CounterVec
}

// NewCollector builds a collector on its own registry, so several instances
// can coexist in tests.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Completions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "completions_total",
				Help:      "Completions recorded or undone",
			},
			[]string{"action"},
		),
		FreezesExpired: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "freezes_expired_total",
				Help:      "Freezes cleared by the expiry sweep",
			},
		),
		RemindersSent: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "reminders_dispatched_total",
				Help:      "Daily reminders dispatched",
			},
		),
		WorkerJobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "worker_jobs_total",
				Help:      "Background jobs processed, by worker and outcome",
			},
			[]string{"worker", "status"},
		),
		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of cache hits",
			},
			[]string{"cache"},
		),
		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "cache_misses_total",
				Help:      "Total number of cache misses",
			},
			[]string{"cache"},
		),
		RateLimited: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "rate_limited_total",
				Help:      "Requests rejected by the rate limiter",
			},
			[]string{"scope"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.HTTPRequests,
		c.HTTPDuration,
		c.Completions,
		c.FreezesExpired,
		c.RemindersSent,
		c.WorkerJobs,
		c.CacheHits,
		c.CacheMisses,
		c.RateLimited,
	)

	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Middleware records request count and latency per matched route.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		if c == nil {
			return
		}
		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := ctx.Request.Method
		c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

func (c *Collector) CompletionRecorded() {
	if c == nil {
		return
	}
	c.Completions.WithLabelValues("complete").Inc()
}

func (c *Collector) CompletionUndone() {
	if c == nil {
		return
	}
	c.Completions.WithLabelValues("undo").Inc()
}

func (c *Collector) FreezesCleared(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.FreezesExpired.Add(float64(n))
}

func (c *Collector) ReminderDispatched() {
	if c == nil {
		return
	}
	c.RemindersSent.Inc()
}

func (c *Collector) JobDone(worker string, err error) {
	if c == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.WorkerJobs.WithLabelValues(worker, status).Inc()
}

func (c *Collector) CacheHit(cache string) {
	if c == nil {
		return
	}
	c.CacheHits.WithLabelValues(cache).Inc()
}

func (c *Collector) CacheMiss(cache string) {
	if c == nil {
		return
	}
	c.CacheMisses.WithLabelValues(cache).Inc()
}

func (c *Collector) Rejected(scope string) {
	if c == nil {
		return
	}
	c.RateLimited.WithLabelValues(scope).Inc()
}
