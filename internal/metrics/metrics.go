// Package metrics holds the Prometheus collectors of a scan run. Each
// Metrics owns a private registry; nothing registers globally.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	reg *prometheus.Registry

	FilesTotal       *prometheus.CounterVec
	EntitiesTotal    prometheus.Counter
	PMIRecordsTotal  *prometheus.CounterVec
	DiagnosticsTotal *prometheus.CounterVec
	CacheTotal       *prometheus.CounterVec
	LoadDuration     prometheus.Histogram
	PhaseDuration    *prometheus.HistogramVec
	BytesRead        prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		FilesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stepscan_files_total",
			Help: "Files scanned, by outcome",
		}, []string{"status"}),
		EntitiesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "stepscan_entities_total",
			Help: "DATA entities loaded",
		}),
		PMIRecordsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stepscan_pmi_records_total",
			Help: "Semantic PMI records extracted, by kind",
		}, []string{"kind"}),
		DiagnosticsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stepscan_diagnostics_total",
			Help: "Diagnostics reported, by severity",
		}, []string{"severity"}),
		CacheTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stepscan_cache_lookups_total",
			Help: "Report cache lookups, by result",
		}, []string{"result"}),
		LoadDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "stepscan_load_duration_seconds",
			Help:    "Time to load one file",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}),
		PhaseDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stepscan_phase_duration_seconds",
			Help:    "Time spent per load phase",
			Buckets: prometheus.DefBuckets,
		}, []string{"phase"}),
		BytesRead: f.NewCounter(prometheus.CounterOpts{
			Name: "stepscan_bytes_read_total",
			Help: "Input bytes read",
		}),
	}
}

// Registry exposes the private registry, for tests and custom exporters.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) RecordLoad(status string, bytes int, d time.Duration) {
	m.FilesTotal.WithLabelValues(status).Inc()
	m.BytesRead.Add(float64(bytes))
	m.LoadDuration.Observe(d.Seconds())
}

func (m *Metrics) RecordCache(hit bool) {
	if hit {
		m.CacheTotal.WithLabelValues("hit").Inc()
	} else {
		m.CacheTotal.WithLabelValues("miss").Inc()
	}
}

// WriteTextfile writes the registry in the text exposition format for the
// node exporter textfile collector. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
