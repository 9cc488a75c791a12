// Package metrics records run statistics as Prometheus collectors and
// exports them for the node exporter textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/TrevorS/repsel"
)

const namespace = "repsel"

// Metrics holds the collectors of one run on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Trials    *prometheus.CounterVec
	BestK     prometheus.Gauge
	BestScore prometheus.Gauge
	Selected  prometheus.Counter
	Files     *prometheus.CounterVec
	Duration  *prometheus.HistogramVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Trials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trials_total",
			Help:      "k-means trials run during model selection, by outcome.",
		}, []string{"outcome"}),
		BestK: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_k",
			Help:      "Group count chosen by the last selection.",
		}),
		BestScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_mean_score",
			Help:      "Mean robustness score of the chosen group count.",
		}),
		Selected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selected_total",
			Help:      "Structures selected as representatives.",
		}),
		Files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Input files processed, by stage and verdict.",
		}, []string{"stage", "verdict"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of each pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"stage"}),
	}
	m.registry.MustRegister(m.Trials, m.BestK, m.BestScore, m.Selected, m.Files, m.Duration)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveSelection records the trial counts and outcome of a search.
func (m *Metrics) ObserveSelection(sel *repsel.Selection) {
	m.Trials.WithLabelValues("scored").Add(float64(sel.Trials - sel.Degenerate))
	m.Trials.WithLabelValues("degenerate").Add(float64(sel.Degenerate))
	m.BestK.Set(float64(sel.BestK))
	m.BestScore.Set(sel.BestMeanScore)
}

// ObserveStage records the duration of a stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.Duration.WithLabelValues(stage).Observe(d.Seconds())
}

// CountFiles adds n files with the given verdict to a stage.
func (m *Metrics) CountFiles(stage, verdict string, n int) {
	m.Files.WithLabelValues(stage, verdict).Add(float64(n))
}

// WriteTextfile writes all collected metrics to path in the text
// exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
