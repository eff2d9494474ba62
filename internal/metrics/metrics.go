package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name
const Namespace = "musicbot"

// Search outcomes
const (
	SearchOK    = "ok"
	SearchEmpty = "empty"
	SearchError = "error"
)

// Download outcomes
const (
	DownloadDone   = "done"
	DownloadFailed = "failed"
)

// Metrics groups the bot collectors around a private registry
type Metrics struct {
	registry         *prometheus.Registry
	searches         *prometheus.CounterVec
	downloads        *prometheus.CounterVec
	downloadDuration prometheus.Histogram
	activeJobs       prometheus.Gauge
}

// New creates the collectors and registers them together with the Go and
// process collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "searches_total",
			Help:      "Catalog searches by outcome.",
		}, []string{"outcome"}),
		downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "downloads_total",
			Help:      "Download jobs by outcome and failure reason.",
		}, []string{"outcome", "reason"}),
		downloadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "download_duration_seconds",
			Help:      "Wall-clock time from job start to done or failed.",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 60, 120, 300},
		}),
		activeJobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "download_jobs_active",
			Help:      "Download jobs currently fetching or delivering.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.searches,
		m.downloads,
		m.downloadDuration,
		m.activeJobs,
	)
	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RegisterGauge registers a gauge whose value is read from fn at scrape time
func (m *Metrics) RegisterGauge(name, help string, fn func() float64) error {
	if m == nil {
		return nil
	}
	return m.registry.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      name,
		Help:      help,
	}, fn))
}

// ObserveSearch counts one search
func (m *Metrics) ObserveSearch(outcome string) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(outcome).Inc()
}

// JobStarted marks a job as active
func (m *Metrics) JobStarted() {
	if m == nil {
		return
	}
	m.activeJobs.Inc()
}

// JobFinished records the outcome of a job that JobStarted marked active.
// reason is empty for successful jobs.
func (m *Metrics) JobFinished(outcome, reason string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.activeJobs.Dec()
	m.downloads.WithLabelValues(outcome, reason).Inc()
	m.downloadDuration.Observe(elapsed.Seconds())
}
