package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/aggregate"
	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/anomaly"
	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/clean"
	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/config"
	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/dataset"
	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/export"
	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/forecast"
	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/insight"
	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/metrics"
	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/report"
	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/score"
)

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a full pipeline run.
type Result struct {
	RunID      string
	ReportPath string
	Bundle     *insight.Bundle
	Steps      []StepResult
}

// Options toggles the optional outputs of a run.
type Options struct {
	SkipReport bool
	SkipExport bool
	SQLite     bool
}

// Pipeline orchestrates one analysis run: load, clean, aggregate, score,
// detect, insights, report, export. Build a fresh Pipeline per run; the
// cleaner and fitted scoring params live inside Run and are never shared
// across runs.
type Pipeline struct {
	cfg *config.Config
	log *zap.Logger
	met *metrics.Metrics
}

// New creates a pipeline. A nil metrics instance disables instrumentation.
func New(cfg *config.Config, log *zap.Logger, met *metrics.Metrics) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{cfg: cfg, log: log, met: met}
}

// run-local state threaded between steps.
type runState struct {
	sets      map[dataset.Kind]*dataset.Dataset
	cleaned   map[dataset.Kind]*dataset.Dataset
	quality   map[dataset.Kind]clean.QualityReport
	states    *dataset.Table
	migration []aggregate.MigrationRow
	coverage  []aggregate.CoverageRow
	ages      []aggregate.AgeGroupTotal
	vuln      []float64
	anomalies []insight.AnomalySummary
	clusters  []anomaly.ClusterProfile
	trend     []forecast.Point
	bundle    *insight.Bundle
}

// Run executes the full pipeline. Row-level data problems never abort a
// run; only structural failures (unreadable source file, no dataset at
// all) stop the remaining steps.
func (p *Pipeline) Run(ctx context.Context, opts Options) *Result {
	_ = ctx // stages are synchronous; nothing suspends

	st := &runState{bundle: insight.NewBundle(time.Now())}
	r := &Result{RunID: st.bundle.RunID}

	type step struct {
		name     string
		fn       func(*runState) (string, error)
		required bool
	}
	steps := []step{
		{"Load", p.runLoad, true},
		{"Clean", p.runClean, true},
		{"Aggregate", p.runAggregate, false},
		{"Score", p.runScore, false},
		{"Detect", p.runDetect, false},
		{"Insights", p.runInsights, false},
	}
	if !opts.SkipReport {
		steps = append(steps, step{"Report", p.runReport, false})
	}
	if !opts.SkipExport {
		steps = append(steps, step{"Export", p.exportStep(opts.SQLite), false})
	}

	for _, step := range steps {
		start := time.Now()
		summary, err := step.fn(st)
		if p.met != nil {
			p.met.StageDuration.WithLabelValues(step.name).Observe(time.Since(start).Seconds())
		}
		r.Steps = append(r.Steps, StepResult{Name: step.name, Summary: summary, Err: err})
		if err != nil {
			p.log.Error("pipeline step failed", zap.String("step", step.name), zap.Error(err))
			if step.required {
				if p.met != nil {
					p.met.PipelineRuns.WithLabelValues("failed").Inc()
				}
				r.Bundle = st.bundle
				return r
			}
		}
	}

	if p.met != nil {
		p.met.PipelineRuns.WithLabelValues("ok").Inc()
	}
	r.Bundle = st.bundle
	r.ReportPath = st.bundle.KeyMetrics["report_path"]
	return r
}

func (p *Pipeline) runLoad(st *runState) (string, error) {
	paths := dataset.Paths{
		Enrolment:   p.cfg.Inputs.Enrolment,
		Demographic: p.cfg.Inputs.Demographic,
		Biometric:   p.cfg.Inputs.Biometric,
	}
	sets, err := dataset.Load(paths, p.log)
	if err != nil {
		return "", err
	}
	if len(sets) == 0 {
		return "", errors.New("no input datasets configured")
	}
	for kind, ds := range sets {
		ds.Schema = p.cfg.SchemaFor(kind)
	}
	st.sets = sets
	for _, kind := range dataset.Kinds {
		_, ok := sets[kind]
		st.bundle.DatasetsLoaded[kind] = ok
	}
	return fmt.Sprintf("Loaded %d of %d datasets", len(sets), len(dataset.Kinds)), nil
}

func (p *Pipeline) runClean(st *runState) (string, error) {
	cleaner := clean.NewCleaner(p.log)
	cleaned, stats, err := cleaner.CleanAll(st.sets)
	if err != nil {
		return "", err
	}
	st.cleaned = cleaned
	st.quality = make(map[dataset.Kind]clean.QualityReport, len(cleaned))

	rows, dupes := 0, 0
	for kind, ds := range cleaned {
		cs := stats[kind]
		rows += cs.RowsOut
		dupes += cs.DuplicatesRemoved
		if p.met != nil {
			p.met.RowsCleaned.WithLabelValues(string(kind)).Add(float64(cs.RowsOut))
		}
		if q, err := clean.Validate(ds, p.cfg.Anomaly.OutlierThreshold); err == nil {
			st.quality[kind] = q
		}
		st.bundle.Summary[kind] = insight.Summarize(ds)
	}
	return fmt.Sprintf("Cleaned %d rows (%d duplicates removed)", rows, dupes), nil
}

func (p *Pipeline) runAggregate(st *runState) (string, error) {
	agg := aggregate.New(p.log)

	enrol := st.cleaned[dataset.Enrolment]
	demo := st.cleaned[dataset.Demographic]
	bio := st.cleaned[dataset.Biometric]

	if enrol != nil {
		var demoTbl *dataset.Table
		if demo != nil {
			demoTbl = demo.Table
		}
		st.migration = agg.MergeMigration(enrol.Table, demoTbl)
		st.ages = agg.AgeGroupTotals(enrol.Table, dataset.ColAadhaarGenerated)
		if states, ok := agg.SumBy(enrol.Table, []string{dataset.ColState}, dataset.ColAadhaarGenerated); ok {
			st.states = states
		}
	}
	if bio != nil {
		st.coverage = agg.BiometricCoverage(bio.Table)
	}
	if enrol == nil && bio == nil {
		return "", fmt.Errorf("aggregating: %w", clean.ErrNotLoaded)
	}
	return fmt.Sprintf("%d migration rows, %d coverage states, %d age buckets",
		len(st.migration), len(st.coverage), len(st.ages)), nil
}

func (p *Pipeline) runScore(st *runState) (string, error) {
	score.ScoreMigration(st.migration)

	weights := score.Weights{
		Age: p.cfg.Scoring.AgeWeight,
		Geo: p.cfg.Scoring.GeoWeight,
		Bio: p.cfg.Scoring.BioWeight,
		Mig: p.cfg.Scoring.MigWeight,
	}
	vulnerable := 0
	if enrol := st.cleaned[dataset.Enrolment]; enrol != nil {
		st.vuln = score.ScoreVulnerability(enrol.Table, score.DefaultVulnerabilityColumns, weights)
		vulnerable = len(score.Vulnerable(st.vuln, p.cfg.Scoring.VulnerableThreshold))
	}
	return fmt.Sprintf("Scored %d migration rows, %d vulnerable rows", len(st.migration), vulnerable), nil
}

func (p *Pipeline) runDetect(st *runState) (string, error) {
	adapter := anomaly.NewAdapter(p.log)
	detector := anomaly.ZScoreDetector{Threshold: p.cfg.Anomaly.Threshold}

	flagMatrix := func(metric string, m anomaly.Matrix) {
		if m.NumRows() == 0 {
			return
		}
		flags := adapter.DetectAnomalies(detector, m)
		flagged := 0
		for _, f := range flags {
			if f {
				flagged++
			}
		}
		if p.met != nil {
			p.met.AnomaliesFound.WithLabelValues(metric).Add(float64(flagged))
		}
		st.anomalies = append(st.anomalies, insight.AnomalySummary{
			Metric:    metric,
			Flagged:   flagged,
			Threshold: p.cfg.Anomaly.Threshold,
		})
	}

	migMatrix := anomaly.Matrix{Features: []string{"update_rate"}}
	for _, r := range st.migration {
		migMatrix.Rows = append(migMatrix.Rows, []float64{r.UpdateRate})
	}
	flagMatrix("update_rate", migMatrix)

	covMatrix := anomaly.Matrix{Features: []string{"coverage"}}
	for _, r := range st.coverage {
		covMatrix.Rows = append(covMatrix.Rows, []float64{r.Coverage})
	}
	flagMatrix("coverage", covMatrix)

	// Cluster districts on enrolment volume and update intensity.
	clusterMatrix := anomaly.Matrix{Features: []string{"enrolment", "update_rate"}}
	for _, r := range st.migration {
		clusterMatrix.Rows = append(clusterMatrix.Rows, []float64{r.Enrolment, r.UpdateRate})
	}
	if clusterMatrix.NumRows() > 0 {
		km := anomaly.KMeans{K: p.cfg.Cluster.K, Seed: p.cfg.Cluster.Seed}
		labels := adapter.ClusterRegions(km, clusterMatrix, p.cfg.Cluster.K)
		st.clusters = anomaly.Profiles(clusterMatrix, labels)
	}

	// Trend supplement: demographic update volume over time.
	if demo := st.cleaned[dataset.Demographic]; demo != nil {
		series := forecast.Prepare(demo.Table, dataset.ColUpdateMonth, dataset.ColUpdateCount)
		st.trend = forecast.ForecastOrFlat(forecast.LinearTrend{}, series, p.cfg.Forecast.Periods, p.log)
	}

	totalFlagged := 0
	for _, a := range st.anomalies {
		totalFlagged += a.Flagged
	}
	return fmt.Sprintf("%d anomalies flagged, %d clusters, %d trend points",
		totalFlagged, len(st.clusters), len(st.trend)), nil
}

func (p *Pipeline) runInsights(st *runState) (string, error) {
	gen := insight.NewGenerator(p.log)
	st.bundle.Insights = gen.Generate(st.migration, st.coverage, st.ages, st.anomalies)
	st.bundle.Recommendations = insight.Recommendations(st.bundle.Insights)
	st.bundle.Anomalies = st.anomalies

	p.fillKeyMetrics(st)
	return fmt.Sprintf("%d insights, %d recommendations",
		len(st.bundle.Insights), len(st.bundle.Recommendations)), nil
}

func (p *Pipeline) fillKeyMetrics(st *runState) {
	var totalEnrolment, totalUpdates float64
	for _, r := range st.migration {
		totalEnrolment += r.Enrolment
		totalUpdates += r.Updates
	}
	if len(st.migration) > 0 {
		st.bundle.AddMetric("districts_analyzed", "%d", len(st.migration))
		st.bundle.AddMetric("total_enrolments", "%.0f", totalEnrolment)
		st.bundle.AddMetric("total_demographic_updates", "%.0f", totalUpdates)
	}
	if st.states != nil && st.states.NumRows() > 0 {
		st.bundle.AddMetric("states_enrolled", "%d", st.states.NumRows())
		var top string
		var topVal float64
		for i := range st.states.Rows {
			if n, ok := st.states.Cell(i, dataset.ColAadhaarGenerated).AsNumber(); ok && (top == "" || n > topVal) {
				top, topVal = st.states.Cell(i, dataset.ColState).String(), n
			}
		}
		if top != "" {
			st.bundle.AddMetric("top_enrolment_state", "%s (%.0f enrolments)", top, topVal)
		}
	}
	if len(st.coverage) > 0 {
		var sum float64
		for _, r := range st.coverage {
			sum += r.Coverage
		}
		st.bundle.AddMetric("states_with_biometric_data", "%d", len(st.coverage))
		st.bundle.AddMetric("avg_biometric_coverage", "%.1f%%", sum/float64(len(st.coverage)))
	}
	if len(st.vuln) > 0 {
		high := len(score.Vulnerable(st.vuln, p.cfg.Scoring.VulnerableThreshold))
		st.bundle.AddMetric("vulnerable_rows", "%d", high)
	}
	if len(st.clusters) > 0 {
		st.bundle.AddMetric("district_clusters", "%d", len(st.clusters))
	}
	if len(st.trend) > 0 {
		st.bundle.AddMetric("projected_monthly_updates", "%.0f", st.trend[len(st.trend)-1].Value)
	}
}

func (p *Pipeline) runReport(st *runState) (string, error) {
	doc := report.Compose(st.bundle, st.quality)
	path, err := report.Write(p.cfg.GetOutputDir(), doc, st.bundle.Timestamp)
	if err != nil {
		return "", err
	}
	if p.met != nil {
		p.met.ReportsRendered.Inc()
	}
	st.bundle.KeyMetrics["report_path"] = path
	return fmt.Sprintf("Report written to %s", path), nil
}

func (p *Pipeline) exportStep(sqlite bool) func(*runState) (string, error) {
	return func(st *runState) (string, error) {
		dir := p.cfg.GetOutputDir()
		paths, err := export.WriteCleanedCSVs(st.cleaned, dir, p.log)
		if err != nil {
			return "", err
		}
		bundlePath, err := export.WriteBundleJSON(st.bundle, dir)
		if err != nil {
			return "", err
		}

		summary := fmt.Sprintf("%d cleaned CSVs and bundle %s", len(paths), bundlePath)
		if sqlite {
			sink, err := export.OpenSink(dir)
			if err != nil {
				return "", err
			}
			defer sink.Close()
			for _, ds := range st.cleaned {
				if err := sink.WriteDataset(ds); err != nil {
					return "", err
				}
			}
			if err := sink.WriteMigration(st.migration); err != nil {
				return "", err
			}
			if err := sink.WriteCoverage(st.coverage); err != nil {
				return "", err
			}
			summary += ", SQLite artifact " + sink.Path()
		}
		return summary, nil
	}
}
