package insight

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/dataset"
)

// SummaryStats describes one cleaned dataset for the bundle.
type SummaryStats struct {
	Records     int            `json:"records"`
	States      int            `json:"states"`
	Districts   int            `json:"districts"`
	UpdateTypes map[string]int `json:"update_types,omitempty"`
}

// AnomalySummary reports one metric's anomaly flagging outcome.
type AnomalySummary struct {
	Metric    string  `json:"metric"`
	Flagged   int     `json:"flagged"`
	Threshold float64 `json:"threshold"`
}

// Bundle is the structured analysis output handed to the report renderer
// and exported as JSON.
type Bundle struct {
	RunID           string                        `json:"run_id"`
	Timestamp       time.Time                     `json:"timestamp"`
	DatasetsLoaded  map[dataset.Kind]bool         `json:"datasets_loaded"`
	Summary         map[dataset.Kind]SummaryStats `json:"summary_stats"`
	Anomalies       []AnomalySummary              `json:"anomalies"`
	KeyMetrics      map[string]string             `json:"key_metrics"`
	Insights        []Insight                     `json:"insights"`
	Recommendations []Recommendation              `json:"recommendations"`
}

// NewBundle starts an empty bundle stamped with a fresh run ID.
func NewBundle(now time.Time) *Bundle {
	return &Bundle{
		RunID:          uuid.NewString(),
		Timestamp:      now,
		DatasetsLoaded: make(map[dataset.Kind]bool),
		Summary:        make(map[dataset.Kind]SummaryStats),
		KeyMetrics:     make(map[string]string),
	}
}

// AddMetric records one display metric.
func (b *Bundle) AddMetric(key, format string, args ...any) {
	b.KeyMetrics[key] = fmt.Sprintf(format, args...)
}

// Summarize computes the bundle statistics of one cleaned dataset.
func Summarize(ds *dataset.Dataset) SummaryStats {
	stats := SummaryStats{Records: ds.Table.NumRows()}
	states := make(map[string]bool)
	districts := make(map[string]bool)
	var types map[string]int
	hasType := ds.Table.ColumnIndex(dataset.ColUpdateType) >= 0
	if hasType {
		types = make(map[string]int)
	}
	for i := range ds.Table.Rows {
		if s := ds.Table.Cell(i, dataset.ColState).String(); s != "" {
			states[s] = true
		}
		if d := ds.Table.Cell(i, dataset.ColDistrict).String(); d != "" {
			districts[d] = true
		}
		if hasType {
			if ut := ds.Table.Cell(i, dataset.ColUpdateType).String(); ut != "" {
				types[ut]++
			}
		}
	}
	stats.States = len(states)
	stats.Districts = len(districts)
	stats.UpdateTypes = types
	return stats
}
