// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector owns every Prometheus metric of the daemon.
type Collector struct {
	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Tracking metrics
	samplesTotal    *prometheus.CounterVec
	attentionEvents prometheus.Counter
	cooldownDrops   prometheus.Counter
	activeSessions  prometheus.Gauge
	gazeDisabled    prometheus.Gauge

	// Resolution metrics
	locateTotal      *prometheus.CounterVec
	extractionLength prometheus.Histogram

	// Fusion metrics
	fusionTotal *prometheus.CounterVec
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter

	// Vision metrics
	visionDuration prometheus.Histogram
	visionFailures prometheus.Counter

	logger *zap.Logger
}

// NewCollector registers all metrics under the given namespace.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	c.samplesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_total",
			Help:      "Raw position samples received, by source",
		},
		[]string{"source"},
	)

	c.attentionEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attention_events_total",
			Help:      "Attention events fired by the dwell machine",
		},
	)

	c.cooldownDrops = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cooldown_drops_total",
			Help:      "Attention events suppressed by the region cooldown",
		},
	)

	c.activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Live tracking sessions",
		},
	)

	c.gazeDisabled = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "gaze_source_disabled",
			Help:      "1 when the external gaze source has been disabled",
		},
	)

	c.locateTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locate_total",
			Help:      "Region location outcomes by renderer kind",
		},
		[]string{"kind", "outcome"},
	)

	c.extractionLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_length_chars",
			Help:      "Assembled extraction length in characters",
			Buckets:   []float64{0, 60, 200, 500, 1000, 2000, 4000},
		},
	)

	c.fusionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fusion_total",
			Help:      "Fusion decisions by attributed source",
		},
		[]string{"source"},
	)

	c.cacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fusion_cache_hits_total",
			Help:      "Fusion cache hits",
		},
	)

	c.cacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fusion_cache_misses_total",
			Help:      "Fusion cache misses",
		},
	)

	c.visionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "vision_call_duration_seconds",
			Help:      "Vision endpoint call duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	c.visionFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vision_failures_total",
			Help:      "Failed vision endpoint calls",
		},
	)

	logger.Info("metrics collector initialized", zap.String("namespace", namespace))
	return c
}

// RecordHTTPRequest records one served HTTP request.
func (c *Collector) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordSample records one raw position sample.
func (c *Collector) RecordSample(source string) {
	c.samplesTotal.WithLabelValues(source).Inc()
}

// RecordAttentionEvent records one fired attention event.
func (c *Collector) RecordAttentionEvent() {
	c.attentionEvents.Inc()
}

// RecordCooldownDrop records one event suppressed by the cooldown.
func (c *Collector) RecordCooldownDrop() {
	c.cooldownDrops.Inc()
}

// SetActiveSessions updates the live session gauge.
func (c *Collector) SetActiveSessions(n int) {
	c.activeSessions.Set(float64(n))
}

// SetGazeDisabled flags the gaze source state.
func (c *Collector) SetGazeDisabled(disabled bool) {
	if disabled {
		c.gazeDisabled.Set(1)
	} else {
		c.gazeDisabled.Set(0)
	}
}

// RecordLocate records one region location outcome.
func (c *Collector) RecordLocate(kind, outcome string) {
	c.locateTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordExtractionLength records the assembled text length.
func (c *Collector) RecordExtractionLength(n int) {
	c.extractionLength.Observe(float64(n))
}

// RecordFusion records one fusion decision and its cache outcome.
func (c *Collector) RecordFusion(source string, cacheHit bool) {
	c.fusionTotal.WithLabelValues(source).Inc()
	if cacheHit {
		c.cacheHits.Inc()
	} else {
		c.cacheMisses.Inc()
	}
}

// RecordVisionCall records one vision endpoint call.
func (c *Collector) RecordVisionCall(duration time.Duration, failed bool) {
	c.visionDuration.Observe(duration.Seconds())
	if failed {
		c.visionFailures.Inc()
	}
}
