package insight

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/aggregate"
	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/dataset"
)

func TestGenerateEmptyInputsEmitNothing(t *testing.T) {
	insights := NewGenerator(nil).Generate(nil, nil, nil, nil)
	if len(insights) != 0 {
		t.Errorf("expected no insights for empty inputs, got %d", len(insights))
	}
}

func TestMigrationRuleTopN(t *testing.T) {
	var rows []aggregate.MigrationRow
	for i := 0; i < 15; i++ {
		rows = append(rows, aggregate.MigrationRow{
			State:    "A",
			District: fmt.Sprintf("D%02d", i),
			Risk:     float64(i),
		})
	}

	insights := NewGenerator(nil).Generate(rows, nil, nil, nil)
	if len(insights) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(insights))
	}
	in := insights[0]
	if in.Category != CategoryMigration || in.Severity != SeverityHigh {
		t.Errorf("unexpected category/severity: %s/%s", in.Category, in.Severity)
	}
	if len(in.Records) != 10 {
		t.Errorf("expected top-10 records, got %d", len(in.Records))
	}
	if in.Records[0]["district"] != "D14" {
		t.Errorf("expected highest risk first, got %s", in.Records[0]["district"])
	}
}

func TestCoverageRule(t *testing.T) {
	rows := []aggregate.CoverageRow{
		{State: "A", Coverage: 80},
		{State: "B", Coverage: 12},
		{State: "C", Coverage: 29.9},
	}

	insights := NewGenerator(nil).Generate(nil, rows, nil, nil)
	if len(insights) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(insights))
	}
	in := insights[0]
	if in.Severity != SeverityCritical {
		t.Errorf("expected CRITICAL, got %s", in.Severity)
	}
	if !strings.Contains(in.Finding, "B") || !strings.Contains(in.Finding, "C") || strings.Contains(in.Finding, "A,") {
		t.Errorf("finding should list only low states: %q", in.Finding)
	}
	if len(in.Records) != 2 {
		t.Errorf("expected 2 supporting records, got %d", len(in.Records))
	}
}

func TestCoverageRuleAllHealthy(t *testing.T) {
	rows := []aggregate.CoverageRow{{State: "A", Coverage: 95}}
	if insights := NewGenerator(nil).Generate(nil, rows, nil, nil); len(insights) != 0 {
		t.Errorf("expected no insight when every state is covered, got %d", len(insights))
	}
}

func TestChildRule(t *testing.T) {
	ages := []aggregate.AgeGroupTotal{
		{AgeGroup: "Child (0-5)", Total: 100},
		{AgeGroup: "CHILD (6-17)", Total: 50},
		{AgeGroup: "Adult (26-40)", Total: 999},
	}

	insights := NewGenerator(nil).Generate(nil, nil, ages, nil)
	if len(insights) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(insights))
	}
	in := insights[0]
	if in.Category != CategoryChild || in.Severity != SeverityHigh {
		t.Errorf("unexpected category/severity: %s/%s", in.Category, in.Severity)
	}
	// Case-insensitive substring match sums both child buckets.
	if !strings.Contains(in.Finding, "150") {
		t.Errorf("expected summed total 150 in finding: %q", in.Finding)
	}
}

func TestAnomalyRule(t *testing.T) {
	anomalies := []AnomalySummary{
		{Metric: "Update_Rate", Flagged: 3, Threshold: 2.5},
		{Metric: "Coverage", Flagged: 0, Threshold: 2.5},
	}

	insights := NewGenerator(nil).Generate(nil, nil, nil, anomalies)
	if len(insights) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(insights))
	}
	if insights[0].Severity != SeverityMedium || len(insights[0].Records) != 1 {
		t.Errorf("unexpected anomaly insight: %+v", insights[0])
	}
}

func TestRecommendations(t *testing.T) {
	insights := []Insight{
		{Category: CategoryMigration},
		{Category: CategoryCoverage},
		{Category: CategoryChild},
		{Category: CategoryAnomaly},
	}
	recs := Recommendations(insights)
	// Coverage and child share the enrollment-program action, emitted once.
	if len(recs) != 3 {
		t.Fatalf("expected 3 recommendations, got %d", len(recs))
	}
	if recs[0].Title != "Strengthen address-update mechanisms" {
		t.Errorf("expected migration recommendation first, got %q", recs[0].Title)
	}
	for _, r := range recs {
		if r.Priority == "" || r.Timeline == "" {
			t.Errorf("recommendation missing priority/timeline: %+v", r)
		}
	}
}

func TestBundle(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	b := NewBundle(now)
	if b.RunID == "" {
		t.Error("expected a run ID")
	}
	if !b.Timestamp.Equal(now) {
		t.Errorf("expected timestamp %v, got %v", now, b.Timestamp)
	}
	b.AddMetric("total_enrolments", "%.0f", 1234.0)
	if b.KeyMetrics["total_enrolments"] != "1234" {
		t.Errorf("unexpected metric value: %q", b.KeyMetrics["total_enrolments"])
	}
}

func TestSummarize(t *testing.T) {
	tbl := dataset.NewTable([]string{"State", "District", "Update_Type"})
	tbl.AppendRow([]dataset.Value{dataset.Text("A"), dataset.Text("X"), dataset.Text("Address")})
	tbl.AppendRow([]dataset.Value{dataset.Text("A"), dataset.Text("Y"), dataset.Text("Address")})
	tbl.AppendRow([]dataset.Value{dataset.Text("B"), dataset.Text("Z"), dataset.Text("Name")})
	ds := &dataset.Dataset{Kind: dataset.Demographic, Schema: dataset.DefaultSchema(dataset.Demographic), Table: tbl}

	stats := Summarize(ds)
	if stats.Records != 3 || stats.States != 2 || stats.Districts != 3 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.UpdateTypes["Address"] != 2 || stats.UpdateTypes["Name"] != 1 {
		t.Errorf("unexpected update types: %v", stats.UpdateTypes)
	}
}
