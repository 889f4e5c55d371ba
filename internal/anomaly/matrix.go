package anomaly

import "github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/dataset"

// Matrix is the numeric feature view the detectors and clusterers operate
// on: rows by named features, with nulls already filled to 0.
type Matrix struct {
	Features []string
	Rows     [][]float64
}

// NumRows returns the row count.
func (m Matrix) NumRows() int {
	return len(m.Rows)
}

// Column returns one feature column by name, nil when absent.
func (m Matrix) Column(name string) []float64 {
	idx := -1
	for i, f := range m.Features {
		if f == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]float64, len(m.Rows))
	for i, row := range m.Rows {
		out[i] = row[idx]
	}
	return out
}

// BuildMatrix extracts the named features from a table. Features the
// table lacks are skipped entirely; null and non-numeric cells of kept
// features become 0.
func BuildMatrix(tbl *dataset.Table, features []string) Matrix {
	var kept []string
	var idx []int
	for _, f := range features {
		if i := tbl.ColumnIndex(f); i >= 0 {
			kept = append(kept, f)
			idx = append(idx, i)
		}
	}
	m := Matrix{Features: kept}
	if len(kept) == 0 {
		return m
	}
	m.Rows = make([][]float64, tbl.NumRows())
	for r := range tbl.Rows {
		row := make([]float64, len(idx))
		for c, i := range idx {
			if n, ok := tbl.Rows[r][i].AsNumber(); ok {
				row[c] = n
			}
		}
		m.Rows[r] = row
	}
	return m
}
