package insight

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/aggregate"
)

// Severity grades a finding.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Insight is one severity-tagged finding with its supporting records.
// Immutable once produced.
type Insight struct {
	Category       string              `json:"category"`
	Severity       Severity            `json:"severity"`
	Finding        string              `json:"finding"`
	Records        []map[string]string `json:"records,omitempty"`
	Recommendation string              `json:"recommendation"`
}

// Categories the rules emit; recommendations key off them.
const (
	CategoryMigration = "migration"
	CategoryCoverage  = "biometric_coverage"
	CategoryChild     = "child_enrolment"
	CategoryAnomaly   = "anomaly"
)

// topDistricts caps the migration rule's supporting records.
const topDistricts = 10

// coverageFloor is the percentage under which a state's biometric
// coverage is critically low.
const coverageFloor = 30.0

// Generator turns scored tables into insights. A pure function of its
// inputs; the logger only narrates which rules fired.
type Generator struct {
	log *zap.Logger
}

// NewGenerator creates a generator logging through the given logger.
func NewGenerator(log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{log: log}
}

// Generate applies every rule independently and returns the findings in
// rule order. A rule with an empty condition set emits nothing.
func (g *Generator) Generate(migration []aggregate.MigrationRow, coverage []aggregate.CoverageRow, ages []aggregate.AgeGroupTotal, anomalies []AnomalySummary) []Insight {
	var out []Insight
	if in, ok := g.migrationRule(migration); ok {
		out = append(out, in)
	}
	if in, ok := g.coverageRule(coverage); ok {
		out = append(out, in)
	}
	if in, ok := g.childRule(ages); ok {
		out = append(out, in)
	}
	if in, ok := g.anomalyRule(anomalies); ok {
		out = append(out, in)
	}
	g.log.Info("insights generated", zap.Int("count", len(out)))
	return out
}

func (g *Generator) migrationRule(rows []aggregate.MigrationRow) (Insight, bool) {
	if len(rows) == 0 {
		return Insight{}, false
	}
	sorted := append([]aggregate.MigrationRow(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Risk > sorted[j].Risk })
	if len(sorted) > topDistricts {
		sorted = sorted[:topDistricts]
	}

	records := make([]map[string]string, 0, len(sorted))
	for _, r := range sorted {
		records = append(records, map[string]string{
			"state":       r.State,
			"district":    r.District,
			"update_rate": fmt.Sprintf("%.2f", r.UpdateRate),
			"risk":        fmt.Sprintf("%.1f", r.Risk),
		})
	}
	return Insight{
		Category: CategoryMigration,
		Severity: SeverityHigh,
		Finding: fmt.Sprintf("%d districts show elevated migration risk, led by %s (%s) at risk %.1f",
			len(sorted), sorted[0].District, sorted[0].State, sorted[0].Risk),
		Records:        records,
		Recommendation: "Prioritize address-update facilities in high-risk districts.",
	}, true
}

func (g *Generator) coverageRule(rows []aggregate.CoverageRow) (Insight, bool) {
	var low []aggregate.CoverageRow
	for _, r := range rows {
		if r.Coverage < coverageFloor {
			low = append(low, r)
		}
	}
	if len(low) == 0 {
		return Insight{}, false
	}

	names := make([]string, len(low))
	records := make([]map[string]string, len(low))
	for i, r := range low {
		names[i] = r.State
		records[i] = map[string]string{
			"state":    r.State,
			"coverage": fmt.Sprintf("%.2f", r.Coverage),
		}
	}
	return Insight{
		Category: CategoryCoverage,
		Severity: SeverityCritical,
		Finding: fmt.Sprintf("%d states fall below %.0f%% biometric coverage: %s",
			len(low), coverageFloor, strings.Join(names, ", ")),
		Records:        records,
		Recommendation: "Run targeted biometric update camps in the listed states.",
	}, true
}

func (g *Generator) childRule(ages []aggregate.AgeGroupTotal) (Insight, bool) {
	var total float64
	var buckets []string
	var records []map[string]string
	for _, a := range ages {
		if !strings.Contains(strings.ToLower(a.AgeGroup), "child") {
			continue
		}
		total += a.Total
		buckets = append(buckets, a.AgeGroup)
		records = append(records, map[string]string{
			"age_group": a.AgeGroup,
			"total":     fmt.Sprintf("%.0f", a.Total),
		})
	}
	if len(buckets) == 0 {
		return Insight{}, false
	}
	return Insight{
		Category: CategoryChild,
		Severity: SeverityHigh,
		Finding: fmt.Sprintf("Child age groups (%s) account for %.0f generated Aadhaar enrolments",
			strings.Join(buckets, ", "), total),
		Records:        records,
		Recommendation: "Sustain school- and anganwadi-based enrolment drives for children.",
	}, true
}

func (g *Generator) anomalyRule(anomalies []AnomalySummary) (Insight, bool) {
	var flagged int
	var records []map[string]string
	for _, a := range anomalies {
		if a.Flagged == 0 {
			continue
		}
		flagged += a.Flagged
		records = append(records, map[string]string{
			"metric":    a.Metric,
			"flagged":   fmt.Sprintf("%d", a.Flagged),
			"threshold": fmt.Sprintf("%.1f", a.Threshold),
		})
	}
	if flagged == 0 {
		return Insight{}, false
	}
	return Insight{
		Category:       CategoryAnomaly,
		Severity:       SeverityMedium,
		Finding:        fmt.Sprintf("%d statistical anomalies flagged across %d metrics", flagged, len(records)),
		Records:        records,
		Recommendation: "Review flagged regions for data entry or reporting irregularities.",
	}, true
}

// Recommendation is one prioritized action for the report.
type Recommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Timeline    string `json:"timeline"`
}

// Recommendations derives the ordered action list from the categories of
// the generated insights. Categories sharing an action (coverage and
// child enrolment both call for targeted programs) contribute it once.
func Recommendations(insights []Insight) []Recommendation {
	seen := make(map[string]bool)
	add := func(out []Recommendation, r Recommendation) []Recommendation {
		if seen[r.Title] {
			return out
		}
		seen[r.Title] = true
		return append(out, r)
	}
	var out []Recommendation
	for _, in := range insights {
		switch in.Category {
		case CategoryAnomaly:
			out = add(out, Recommendation{
				Title:       "Establish a data quality framework",
				Description: "Institute automated anomaly review so flagged regions are verified before metrics are published.",
				Priority:    "High",
				Timeline:    "3 months",
			})
		case CategoryCoverage, CategoryChild:
			out = add(out, Recommendation{
				Title:       "Launch targeted enrollment programs",
				Description: "Direct mobile enrolment and biometric update camps at the under-covered states and vulnerable age groups identified.",
				Priority:    "Critical",
				Timeline:    "6 months",
			})
		case CategoryMigration:
			out = add(out, Recommendation{
				Title:       "Strengthen address-update mechanisms",
				Description: "Simplify address changes in districts with high migration risk to keep demographic records current.",
				Priority:    "High",
				Timeline:    "6 months",
			})
		}
	}
	return out
}
