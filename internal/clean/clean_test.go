package clean

import (
	"testing"

	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/dataset"
)

func newEnrolment(t *testing.T, columns []string, rows ...[]dataset.Value) *dataset.Dataset {
	t.Helper()
	tbl := dataset.NewTable(columns)
	for _, row := range rows {
		tbl.AppendRow(row)
	}
	return &dataset.Dataset{Kind: dataset.Enrolment, Schema: dataset.DefaultSchema(dataset.Enrolment), Table: tbl}
}

func TestCleanNilDataset(t *testing.T) {
	c := NewCleaner(nil)
	if _, _, err := c.Clean(nil); err != ErrNotLoaded {
		t.Errorf("expected ErrNotLoaded, got %v", err)
	}
}

func TestCleanDropsDuplicates(t *testing.T) {
	ds := newEnrolment(t,
		[]string{"State", "District", "Pin Code", "Aadhaar Generated"},
		[]dataset.Value{dataset.Text("A"), dataset.Text("X"), dataset.Text("1"), dataset.Text("100")},
		[]dataset.Value{dataset.Text("A"), dataset.Text("X"), dataset.Text("1"), dataset.Text("100")},
	)

	out, stats, err := NewCleaner(nil).Clean(ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Table.NumRows() != 1 {
		t.Fatalf("expected 1 row after dedupe, got %d", out.Table.NumRows())
	}
	if stats.DuplicatesRemoved != 1 {
		t.Errorf("expected 1 duplicate removed, got %d", stats.DuplicatesRemoved)
	}
	// Input dataset stays untouched.
	if ds.Table.NumRows() != 2 {
		t.Errorf("input mutated: %d rows", ds.Table.NumRows())
	}
}

func TestCleanKeepsRowsDifferingInTimeOfDay(t *testing.T) {
	// Datetime layouts parse below date granularity; rows that differ
	// only in the time of day are not full-row duplicates.
	ds := newEnrolment(t,
		[]string{"State", "District", "Pin Code", "Enrolment_Month"},
		[]dataset.Value{dataset.Text("A"), dataset.Text("X"), dataset.Text("1"), dataset.Text("2023-01-05 10:00:00")},
		[]dataset.Value{dataset.Text("A"), dataset.Text("X"), dataset.Text("1"), dataset.Text("2023-01-05 11:00:00")},
	)

	out, stats, err := NewCleaner(nil).Clean(ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Table.NumRows() != 2 {
		t.Fatalf("distinct instants collapsed: expected 2 rows, got %d", out.Table.NumRows())
	}
	if stats.DuplicatesRemoved != 0 {
		t.Errorf("expected no duplicates removed, got %d", stats.DuplicatesRemoved)
	}
}

func TestCleanFillOrder(t *testing.T) {
	ds := newEnrolment(t,
		[]string{"State", "District", "Pin Code", "Aadhaar Generated"},
		[]dataset.Value{dataset.Null(), dataset.Text("X"), dataset.Text("1"), dataset.Text("10")},
		[]dataset.Value{dataset.Text("A"), dataset.Text("Y"), dataset.Text("2"), dataset.Null()},
		[]dataset.Value{dataset.Text("B"), dataset.Text("Z"), dataset.Text("3"), dataset.Text("30")},
	)

	out, _, err := NewCleaner(nil).Clean(ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Leading null back-fills from the first later value.
	if got := out.Table.Cell(0, "State"); got.Str != "A" {
		t.Errorf("leading null: expected back-fill A, got %q", got.Str)
	}
	// Interior null forward-fills from above.
	if got := out.Table.Cell(1, "Aadhaar Generated"); got.IsNull() || got.Num != 10 {
		t.Errorf("interior null: expected forward-fill 10, got %+v", got)
	}
}

func TestCleanLeavesEmptyColumnNull(t *testing.T) {
	ds := newEnrolment(t,
		[]string{"State", "District", "Pin Code", "Notes"},
		[]dataset.Value{dataset.Text("A"), dataset.Text("X"), dataset.Text("1"), dataset.Null()},
		[]dataset.Value{dataset.Text("B"), dataset.Text("Y"), dataset.Text("2"), dataset.Null()},
	)

	out, _, err := NewCleaner(nil).Clean(ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < out.Table.NumRows(); i++ {
		if !out.Table.Cell(i, "Notes").IsNull() {
			t.Errorf("row %d: wholly-null column should keep its nulls", i)
		}
	}
}

func TestCleanParsesDates(t *testing.T) {
	ds := newEnrolment(t,
		[]string{"State", "District", "Pin Code", "Enrolment_Month"},
		[]dataset.Value{dataset.Text("A"), dataset.Text("X"), dataset.Text("1"), dataset.Text("2023-04")},
		[]dataset.Value{dataset.Text("B"), dataset.Text("Y"), dataset.Text("2"), dataset.Text("not a date")},
	)

	out, _, err := NewCleaner(nil).Clean(ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := out.Table.Cell(0, "Enrolment_Month")
	if got.Kind != dataset.KindTime {
		t.Fatalf("expected parsed time, got kind %d", got.Kind)
	}
	if got.T.Year() != 2023 || got.T.Month() != 4 {
		t.Errorf("expected 2023-04, got %v", got.T)
	}
	// Parsing runs before filling, so the unparsable cell becomes null
	// and then fills from its neighbor like any other missing value.
	if filled := out.Table.Cell(1, "Enrolment_Month"); filled.Kind != dataset.KindTime || !filled.T.Equal(got.T) {
		t.Errorf("unparsable date should null out then fill from neighbor, got %+v", filled)
	}
}

func TestCleanAllBadDatesStayNull(t *testing.T) {
	ds := newEnrolment(t,
		[]string{"State", "District", "Pin Code", "Enrolment_Month"},
		[]dataset.Value{dataset.Text("A"), dataset.Text("X"), dataset.Text("1"), dataset.Text("garbage")},
		[]dataset.Value{dataset.Text("B"), dataset.Text("Y"), dataset.Text("2"), dataset.Text("worse")},
	)

	out, _, err := NewCleaner(nil).Clean(ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < out.Table.NumRows(); i++ {
		if !out.Table.Cell(i, "Enrolment_Month").IsNull() {
			t.Errorf("row %d: wholly-unparsable date column should stay null", i)
		}
	}
}

func TestCleanCoercesNumericColumns(t *testing.T) {
	ds := newEnrolment(t,
		[]string{"State", "District", "Pin Code", "Aadhaar Generated", "Remark"},
		[]dataset.Value{dataset.Text("A"), dataset.Text("X"), dataset.Text("781001"), dataset.Text("12"), dataset.Text("12")},
		[]dataset.Value{dataset.Text("B"), dataset.Text("Y"), dataset.Text("781002"), dataset.Text("34"), dataset.Text("abc")},
	)

	out, _, err := NewCleaner(nil).Clean(ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := out.Table.Cell(0, "Aadhaar Generated"); got.Kind != dataset.KindNumber || got.Num != 12 {
		t.Errorf("expected numeric 12, got %+v", got)
	}
	// Mixed column stays text.
	if got := out.Table.Cell(0, "Remark"); got.Kind != dataset.KindText {
		t.Errorf("mixed column should stay text, got kind %d", got.Kind)
	}
}

func TestCleanDropsUnresolvableKeys(t *testing.T) {
	tbl := dataset.NewTable([]string{"State", "District", "Pin Code", "Aadhaar Generated"})
	// Every key cell null in every row: filling has nothing to propagate.
	tbl.AppendRow([]dataset.Value{dataset.Null(), dataset.Null(), dataset.Null(), dataset.Text("5")})
	ds := &dataset.Dataset{Kind: dataset.Enrolment, Schema: dataset.DefaultSchema(dataset.Enrolment), Table: tbl}

	out, stats, err := NewCleaner(nil).Clean(ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Table.NumRows() != 0 {
		t.Errorf("expected key-less row dropped, got %d rows", out.Table.NumRows())
	}
	if stats.KeyRowsDropped != 1 {
		t.Errorf("expected 1 key row dropped, got %d", stats.KeyRowsDropped)
	}
}

func TestCleanIdempotent(t *testing.T) {
	ds := newEnrolment(t,
		[]string{"State", "District", "Pin Code", "Aadhaar Generated", "Enrolment_Month"},
		[]dataset.Value{dataset.Text("A"), dataset.Text("X"), dataset.Text("1"), dataset.Text("100"), dataset.Text("2023-01")},
		[]dataset.Value{dataset.Text("A"), dataset.Text("X"), dataset.Text("1"), dataset.Text("100"), dataset.Text("2023-01")},
		[]dataset.Value{dataset.Null(), dataset.Text("Y"), dataset.Text("2"), dataset.Text("bad"), dataset.Text("nope")},
	)

	c := NewCleaner(nil)
	once, _, err := c.Clean(ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	twice, stats, err := c.Clean(once)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !twice.Table.Equal(once.Table) {
		t.Error("cleaning a clean dataset should be a fixed point")
	}
	if stats.DuplicatesRemoved != 0 || stats.KeyRowsDropped != 0 {
		t.Errorf("second pass should change nothing: %+v", stats)
	}
}

func TestCleanAll(t *testing.T) {
	sets := map[dataset.Kind]*dataset.Dataset{
		dataset.Enrolment: newEnrolment(t,
			[]string{"State", "District", "Pin Code"},
			[]dataset.Value{dataset.Text("A"), dataset.Text("X"), dataset.Text("1")},
		),
	}
	cleaned, stats, err := NewCleaner(nil).CleanAll(sets)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cleaned) != 1 || cleaned[dataset.Enrolment] == nil {
		t.Fatal("expected cleaned enrolment dataset")
	}
	if stats[dataset.Enrolment].RowsOut != 1 {
		t.Errorf("expected 1 row out, got %d", stats[dataset.Enrolment].RowsOut)
	}
}

func TestValidate(t *testing.T) {
	tbl := dataset.NewTable([]string{"State", "Count"})
	for i := 0; i < 19; i++ {
		tbl.AppendRow([]dataset.Value{dataset.Text("A"), dataset.Number(1)})
	}
	tbl.AppendRow([]dataset.Value{dataset.Null(), dataset.Number(100)})
	ds := &dataset.Dataset{Kind: dataset.Biometric, Schema: dataset.DefaultSchema(dataset.Biometric), Table: tbl}

	rep, err := Validate(ds, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Rows != 20 {
		t.Errorf("expected 20 rows, got %d", rep.Rows)
	}
	state := rep.Columns[0]
	if state.MissingShare != 0.05 {
		t.Errorf("expected missing share 0.05, got %f", state.MissingShare)
	}
	count := rep.Columns[1]
	if count.Kind != "number" {
		t.Errorf("expected number kind, got %s", count.Kind)
	}
	// A lone outlier among n points has |z| = sqrt(n-1); sqrt(19) > 3.
	if count.OutlierCount != 1 {
		t.Errorf("expected 1 outlier at |z|>3, got %d", count.OutlierCount)
	}
}

func TestValidateOutlierThreshold(t *testing.T) {
	// The lone outlier among 5 points has |z| = 2.0: invisible at the
	// default cutoff, counted once the threshold drops below 2.
	tbl := dataset.NewTable([]string{"State", "Count"})
	for i := 0; i < 4; i++ {
		tbl.AppendRow([]dataset.Value{dataset.Text("A"), dataset.Number(1)})
	}
	tbl.AppendRow([]dataset.Value{dataset.Text("A"), dataset.Number(100)})
	ds := &dataset.Dataset{Kind: dataset.Biometric, Schema: dataset.DefaultSchema(dataset.Biometric), Table: tbl}

	rep, err := Validate(ds, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rep.Columns[1].OutlierCount; got != 0 {
		t.Errorf("default threshold: expected 0 outliers, got %d", got)
	}

	rep, err = Validate(ds, 1.9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rep.Columns[1].OutlierCount; got != 1 {
		t.Errorf("threshold 1.9: expected 1 outlier, got %d", got)
	}
}

func TestValidateNil(t *testing.T) {
	if _, err := Validate(nil, 0); err != ErrNotLoaded {
		t.Errorf("expected ErrNotLoaded, got %v", err)
	}
}
