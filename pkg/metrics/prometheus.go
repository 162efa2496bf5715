package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes the application's Prometheus instruments.
type Recorder struct {
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	fetchRetries     *prometheus.CounterVec
	upstreamFailures *prometheus.CounterVec
	pipelineFailures prometheus.Counter
	signalsEmitted   *prometheus.CounterVec
	fetchDuration    *prometheus.HistogramVec
}

// New creates a recorder registered with the default registry.
func New() *Recorder {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates a recorder on an explicit registry. Tests use this to
// avoid duplicate registration in one process.
func NewWith(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_cache_hits_total",
				Help: "Cache hits by dataset kind",
			},
			[]string{"kind"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_cache_misses_total",
				Help: "Cache misses by dataset kind",
			},
			[]string{"kind"},
		),
		fetchRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_fetch_retries_total",
				Help: "Upstream fetch retries by dataset kind",
			},
			[]string{"kind"},
		),
		upstreamFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_upstream_failures_total",
				Help: "Upstream fetches that exhausted all attempts",
			},
			[]string{"kind"},
		),
		pipelineFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "stockpulse_pipeline_failures_total",
				Help: "Per-symbol pipeline runs that ended in an error",
			},
		),
		signalsEmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_signals_emitted_total",
				Help: "Latest-day signals emitted by action",
			},
			[]string{"action"},
		),
		fetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockpulse_fetch_duration_seconds",
				Help:    "Duration of upstream fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
	}
}

// RecordCacheHit records a fresh cache read.
func (r *Recorder) RecordCacheHit(kind string) {
	r.cacheHits.WithLabelValues(kind).Inc()
}

// RecordCacheMiss records an absent or stale cache read.
func (r *Recorder) RecordCacheMiss(kind string) {
	r.cacheMisses.WithLabelValues(kind).Inc()
}

// RecordFetchRetry records one retry of an upstream fetch.
func (r *Recorder) RecordFetchRetry(kind string) {
	r.fetchRetries.WithLabelValues(kind).Inc()
}

// RecordUpstreamFailure records a fetch that gave up.
func (r *Recorder) RecordUpstreamFailure(kind string) {
	r.upstreamFailures.WithLabelValues(kind).Inc()
}

// RecordPipelineFailure records a per-symbol pipeline error.
func (r *Recorder) RecordPipelineFailure() {
	r.pipelineFailures.Inc()
}

// RecordSignal records a latest-day signal by action label.
func (r *Recorder) RecordSignal(action string) {
	r.signalsEmitted.WithLabelValues(action).Inc()
}

// RecordFetchDuration records upstream fetch latency in seconds.
func (r *Recorder) RecordFetchDuration(kind string, seconds float64) {
	r.fetchDuration.WithLabelValues(kind).Observe(seconds)
}
