package dataset

// Table is an ordered collection of rows sharing one header. Rows are
// row-major; every row has exactly len(Columns) cells. Unknown extra
// columns ride along untouched through the whole pipeline.
type Table struct {
	Columns []string
	Rows    [][]Value
}

// NewTable creates an empty table with the given header.
func NewTable(columns []string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// ColumnIndex returns the position of a column, or -1 when absent.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumns reports whether every named column is present.
func (t *Table) HasColumns(names ...string) bool {
	for _, n := range names {
		if t.ColumnIndex(n) < 0 {
			return false
		}
	}
	return true
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// AppendRow adds a row, padding or truncating to the header width.
func (t *Table) AppendRow(cells []Value) {
	row := make([]Value, len(t.Columns))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = Null()
		}
	}
	t.Rows = append(t.Rows, row)
}

// Cell returns the value at (row, column name); null when the column is
// absent.
func (t *Table) Cell(row int, name string) Value {
	idx := t.ColumnIndex(name)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return Null()
	}
	return t.Rows[row][idx]
}

// Column returns a copy of one column's cells; nil when absent.
func (t *Table) Column(name string) []Value {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	out := make([]Value, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out
}

// NumberColumn returns one column as floats plus a parallel validity
// mask; absent columns return (nil, nil). Cells that are not numeric
// (and do not parse as numeric text) are marked invalid.
func (t *Table) NumberColumn(name string) ([]float64, []bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, nil
	}
	nums := make([]float64, len(t.Rows))
	ok := make([]bool, len(t.Rows))
	for i, row := range t.Rows {
		nums[i], ok[i] = row[idx].AsNumber()
	}
	return nums, ok
}

// Clone deep-copies the table.
func (t *Table) Clone() *Table {
	out := NewTable(t.Columns)
	out.Rows = make([][]Value, len(t.Rows))
	for i, row := range t.Rows {
		out.Rows[i] = append([]Value(nil), row...)
	}
	return out
}

// rowsEqual reports cell-wise equality of two rows.
func rowsEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// Equal reports whether two tables have identical headers and cells.
func (t *Table) Equal(o *Table) bool {
	if len(t.Columns) != len(o.Columns) || len(t.Rows) != len(o.Rows) {
		return false
	}
	for i := range t.Columns {
		if t.Columns[i] != o.Columns[i] {
			return false
		}
	}
	for i := range t.Rows {
		if !rowsEqual(t.Rows[i], o.Rows[i]) {
			return false
		}
	}
	return true
}
