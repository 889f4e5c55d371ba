package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline's Prometheus collectors. One instance per
// process, registered on its own registry so tests stay isolated.
type Metrics struct {
	Registry *prometheus.Registry

	PipelineRuns    *prometheus.CounterVec
	RowsCleaned     *prometheus.CounterVec
	AnomaliesFound  *prometheus.CounterVec
	ReportsRendered prometheus.Counter
	StageDuration   *prometheus.HistogramVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		PipelineRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uidai_pipeline_runs_total",
				Help: "Completed pipeline runs by outcome",
			},
			[]string{"status"},
		),
		RowsCleaned: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uidai_rows_cleaned_total",
				Help: "Rows surviving cleaning per dataset",
			},
			[]string{"dataset"},
		),
		AnomaliesFound: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uidai_anomalies_flagged_total",
				Help: "Anomalous rows flagged per metric",
			},
			[]string{"metric"},
		),
		ReportsRendered: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "uidai_reports_rendered_total",
				Help: "Reports rendered to disk",
			},
		),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "uidai_stage_duration_seconds",
				Help:    "Pipeline stage wall time",
				Buckets: []float64{0.01, 0.05, 0.25, 1, 5, 30},
			},
			[]string{"stage"},
		),
	}
	m.Registry.MustRegister(
		m.PipelineRuns,
		m.RowsCleaned,
		m.AnomaliesFound,
		m.ReportsRendered,
		m.StageDuration,
	)
	return m
}
