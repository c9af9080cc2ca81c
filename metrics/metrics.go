// Package metrics exports Prometheus instrumentation for imports, reprocessing and
// intelligence snapshots.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "adscale"

// Metrics is safe to use as a nil pointer; every recorder is then a no-op.
type Metrics struct {
	RecordsNormalized prometheus.Counter
	MediaLinks        *prometheus.CounterVec
	AdsReprocessed    prometheus.Counter

	SnapshotsComputed   prometheus.Counter
	SnapshotCacheHits   prometheus.Counter
	SnapshotDuration    prometheus.Histogram
	HypeAdsDetected     prometheus.Gauge
	CorpusSize          prometheus.Gauge
	HTTPRequestDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns the metrics registered on the global Prometheus registry.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = New(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	})
	return defaultMetrics
}

// New registers all collectors on reg. Tests pass a fresh prometheus.NewRegistry.
func New(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RecordsNormalized: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_normalized_total",
			Help:      "Import rows turned into ads",
		}),
		MediaLinks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "media_links_total",
			Help:      "Media link outcome per imported row",
		}, []string{"status"}),
		AdsReprocessed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ads_reprocessed_total",
			Help:      "Ads rewritten by a region/status reprocess",
		}),
		SnapshotsComputed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_computed_total",
			Help:      "Intelligence snapshots recomputed from the corpus",
		}),
		SnapshotCacheHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_cache_hits_total",
			Help:      "Intelligence snapshots served from cache",
		}),
		SnapshotDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_duration_seconds",
			Help:      "Time to recompute an intelligence snapshot",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		HypeAdsDetected: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "hype_ads_detected",
			Help:      "Hype ads flagged by the latest snapshot",
		}),
		CorpusSize: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_size",
			Help:      "Ads in the corpus at the latest snapshot",
		}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "API request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		gatherer: gatherer,
	}
}

// Handler serves the registry this Metrics was built on.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordNormalized(linkStatus string) {
	if m == nil {
		return
	}
	m.RecordsNormalized.Inc()
	m.MediaLinks.WithLabelValues(linkStatus).Inc()
}

func (m *Metrics) RecordReprocessed(n int) {
	if m == nil {
		return
	}
	m.AdsReprocessed.Add(float64(n))
}

// RecordSnapshot is called after a recomputation.
func (m *Metrics) RecordSnapshot(d time.Duration, corpusSize, hypeAds int) {
	if m == nil {
		return
	}
	m.SnapshotsComputed.Inc()
	m.SnapshotDuration.Observe(d.Seconds())
	m.CorpusSize.Set(float64(corpusSize))
	m.HypeAdsDetected.Set(float64(hypeAds))
}

func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.SnapshotCacheHits.Inc()
}

func (m *Metrics) ObserveRequest(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}
