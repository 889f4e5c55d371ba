package score

import (
	"math"
	"testing"

	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/aggregate"
	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/dataset"
)

func TestMigrationRiskRange(t *testing.T) {
	p := FitMigration([]float64{0, 25, 50, 100})
	for _, rate := range []float64{0, 25, 50, 100} {
		risk := MigrationRisk(rate, p)
		if risk < 0 || risk > 100 {
			t.Errorf("risk out of range for rate %f: %f", rate, risk)
		}
	}
	if got := MigrationRisk(0, p); got != 0 {
		t.Errorf("min rate should score 0, got %f", got)
	}
	if got := MigrationRisk(100, p); got != 100 {
		t.Errorf("max rate should score 100, got %f", got)
	}
	if got := MigrationRisk(50, p); got != 50 {
		t.Errorf("midpoint should score 50, got %f", got)
	}
}

func TestMigrationRiskZeroVariance(t *testing.T) {
	p := FitMigration([]float64{7, 7, 7})
	if got := MigrationRisk(7, p); got != 50 {
		t.Errorf("zero-variance batch should score neutral 50, got %f", got)
	}
}

func TestMigrationRiskSingleRow(t *testing.T) {
	p := FitMigration([]float64{42})
	if got := MigrationRisk(42, p); got != 50 {
		t.Errorf("single-row batch should score 50, got %f", got)
	}
}

func TestMigrationRiskEmptyBatch(t *testing.T) {
	p := FitMigration(nil)
	if got := MigrationRisk(3, p); got != 50 {
		t.Errorf("unfitted params should score 50, got %f", got)
	}
}

func TestScoreMigrationFillsRisk(t *testing.T) {
	rows := []aggregate.MigrationRow{
		{State: "A", District: "X", UpdateRate: 0},
		{State: "A", District: "Y", UpdateRate: 10},
	}
	ScoreMigration(rows)
	if rows[0].Risk != 0 || rows[1].Risk != 100 {
		t.Errorf("expected risks 0 and 100, got %f and %f", rows[0].Risk, rows[1].Risk)
	}
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	if math.Abs(DefaultWeights.Sum()-1.0) > 1e-12 {
		t.Errorf("default weights must sum to 1, got %f", DefaultWeights.Sum())
	}
}

func TestAgeScoreTable(t *testing.T) {
	cases := map[string]float64{
		"Child (0-5)":    1.0,
		"Child (6-17)":   0.9,
		"Youth (18-25)":  0.3,
		"Adult (26-40)":  0.2,
		"Senior (41-60)": 0.3,
		"Elderly (60+)":  0.8,
		"Unknown":        0.5,
	}
	for group, want := range cases {
		if got := AgeScore(group); got != want {
			t.Errorf("AgeScore(%q) = %f, want %f", group, got, want)
		}
	}
}

func vulnTable(t *testing.T, columns []string, rows ...[]dataset.Value) *dataset.Table {
	t.Helper()
	tbl := dataset.NewTable(columns)
	for _, row := range rows {
		tbl.AppendRow(row)
	}
	return tbl
}

func TestVulnerabilityAgeOnly(t *testing.T) {
	tbl := vulnTable(t, []string{"Age_Group"},
		[]dataset.Value{dataset.Text("Child (0-5)")},
	)

	scores := ScoreVulnerability(tbl, DefaultVulnerabilityColumns, DefaultWeights)
	// Only the age column is present: the other weights are excluded, not
	// defaulted, so the composite is exactly 1.0 * 0.4.
	if math.Abs(scores[0]-0.4) > 1e-12 {
		t.Errorf("expected 0.4, got %f", scores[0])
	}
}

func TestVulnerabilityAllColumns(t *testing.T) {
	cols := VulnerabilityColumns{
		Age:        "Age_Group",
		Enrolment:  "Enrolment",
		BioUpdates: "Bio",
		MigUpdates: "Mig",
	}
	tbl := vulnTable(t, []string{"Age_Group", "Enrolment", "Bio", "Mig"},
		[]dataset.Value{dataset.Text("Child (0-5)"), dataset.Number(0), dataset.Number(0), dataset.Number(10)},
		[]dataset.Value{dataset.Text("Adult (26-40)"), dataset.Number(100), dataset.Number(10), dataset.Number(0)},
	)

	scores := ScoreVulnerability(tbl, cols, DefaultWeights)
	// Row 0 maxes every sub-score (modulo epsilon): lowest enrolment,
	// zero bio updates, highest mig updates, most vulnerable age bucket.
	if scores[0] < 0.99 || scores[0] > 1 {
		t.Errorf("expected near-1 composite, got %f", scores[0])
	}
	// Row 1 bottoms every sub-score except age (0.2).
	if scores[1] > 0.1 {
		t.Errorf("expected near-0.08 composite, got %f", scores[1])
	}
	for i, s := range scores {
		if s < 0 || s > 1 {
			t.Errorf("row %d composite out of range: %f", i, s)
		}
	}
}

func TestVulnerabilityNullCellsNeutral(t *testing.T) {
	cols := VulnerabilityColumns{Enrolment: "Enrolment"}
	tbl := vulnTable(t, []string{"Enrolment"},
		[]dataset.Value{dataset.Null()},
		[]dataset.Value{dataset.Number(5)},
	)

	p := FitVulnerability(tbl, cols)
	got := VulnerabilityScore(tbl, 0, cols, p, DefaultWeights)
	if math.Abs(got-0.3*0.5) > 1e-12 {
		t.Errorf("null cell should score neutral 0.5 before weighting, got %f", got)
	}
}

func TestVulnerable(t *testing.T) {
	scores := []float64{0.9, 0.2, 0.75, 0.7}
	idx := Vulnerable(scores, VulnerableThreshold)
	want := []int{0, 2, 3}
	if len(idx) != len(want) {
		t.Fatalf("expected %d vulnerable rows, got %d", len(want), len(idx))
	}
	for i, w := range want {
		if idx[i] != w {
			t.Errorf("idx[%d] = %d, want %d (sorted descending by score)", i, idx[i], w)
		}
	}
}
