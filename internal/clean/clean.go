package clean

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/dataset"
)

// ErrNotLoaded signals the structural precondition failure: an operation
// needs a dataset that was never loaded. It is distinct from row-level
// data-quality problems, which never surface as errors.
var ErrNotLoaded = errors.New("dataset not loaded")

// Stats summarizes what one cleaning pass changed.
type Stats struct {
	RowsIn            int
	RowsOut           int
	DuplicatesRemoved int
	KeyRowsDropped    int
	DatesParsed       int
	ColumnsCoerced    []string
}

// Cleaner normalizes one dataset at a time. Instances are single-owner:
// each analysis run builds its own Cleaner rather than sharing one.
type Cleaner struct {
	log *zap.Logger
}

// NewCleaner creates a cleaner logging through the given logger.
func NewCleaner(log *zap.Logger) *Cleaner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cleaner{log: log}
}

// Clean produces a new, normalized dataset. In order: schema date columns
// are parsed, with unparsable cells becoming null; missing values are then
// forward- and back-filled per column, so a coercion-failure null is
// treated like any other missing value (wholly-null columns are left
// untouched and keep their nulls); full-row duplicates are dropped keeping
// the first occurrence; text columns whose every non-null cell parses
// numerically are coerced to numbers; finally rows whose geographic key
// is still unresolvable are dropped. Parsing before filling keeps Clean a
// fixed point: a second pass finds no text dates and no fillable nulls.
// Individual bad values never cause an error — only a nil dataset does.
func (c *Cleaner) Clean(ds *dataset.Dataset) (*dataset.Dataset, Stats, error) {
	if ds == nil || ds.Table == nil {
		return nil, Stats{}, ErrNotLoaded
	}

	out := ds.Clone()
	stats := Stats{RowsIn: out.Table.NumRows()}

	stats.DatesParsed = parseDates(out.Table, out.Schema)
	fillMissing(out.Table)
	stats.DuplicatesRemoved = dropDuplicates(out.Table)
	stats.ColumnsCoerced = coerceNumeric(out.Table)
	stats.KeyRowsDropped = dropNullKeys(out.Table, out.Schema)
	stats.RowsOut = out.Table.NumRows()

	c.log.Info("dataset cleaned",
		zap.String("dataset", string(ds.Kind)),
		zap.Int("rows_in", stats.RowsIn),
		zap.Int("rows_out", stats.RowsOut),
		zap.Int("duplicates_removed", stats.DuplicatesRemoved),
		zap.Int("key_rows_dropped", stats.KeyRowsDropped),
		zap.Strings("columns_coerced", stats.ColumnsCoerced))

	return out, stats, nil
}

// CleanAll cleans every loaded dataset, keyed by kind. Absent kinds stay
// absent; they are not an error here.
func (c *Cleaner) CleanAll(sets map[dataset.Kind]*dataset.Dataset) (map[dataset.Kind]*dataset.Dataset, map[dataset.Kind]Stats, error) {
	cleaned := make(map[dataset.Kind]*dataset.Dataset, len(sets))
	stats := make(map[dataset.Kind]Stats, len(sets))
	for kind, ds := range sets {
		cds, st, err := c.Clean(ds)
		if err != nil {
			return nil, nil, fmt.Errorf("cleaning %s: %w", kind, err)
		}
		cleaned[kind] = cds
		stats[kind] = st
	}
	return cleaned, stats, nil
}

// fillMissing forward-fills then back-fills nulls column by column. A
// column with no non-null cell at all is left as is; those residual
// nulls are an accepted outcome.
func fillMissing(tbl *dataset.Table) {
	for col := range tbl.Columns {
		last := dataset.Null()
		for i := range tbl.Rows {
			if tbl.Rows[i][col].IsNull() {
				tbl.Rows[i][col] = last
			} else {
				last = tbl.Rows[i][col]
			}
		}
		next := dataset.Null()
		for i := len(tbl.Rows) - 1; i >= 0; i-- {
			if tbl.Rows[i][col].IsNull() {
				tbl.Rows[i][col] = next
			} else {
				next = tbl.Rows[i][col]
			}
		}
	}
}

// parseDates converts text cells of the schema's date columns into time
// values. Unparsable cells become null instead of failing the batch.
// Already-parsed cells pass through, keeping the operation idempotent.
func parseDates(tbl *dataset.Table, schema dataset.Schema) int {
	parsed := 0
	for _, name := range schema.DateColumns {
		col := tbl.ColumnIndex(name)
		if col < 0 {
			continue
		}
		for i := range tbl.Rows {
			cell := tbl.Rows[i][col]
			if cell.Kind != dataset.KindText {
				continue
			}
			if t, ok := dataset.ParseDate(cell.Str); ok {
				tbl.Rows[i][col] = dataset.Date(t)
				parsed++
			} else {
				tbl.Rows[i][col] = dataset.Null()
			}
		}
	}
	return parsed
}

// dropDuplicates removes full-row duplicates, keeping first occurrences.
func dropDuplicates(tbl *dataset.Table) int {
	seen := make(map[string]bool, len(tbl.Rows))
	kept := tbl.Rows[:0]
	removed := 0
	for _, row := range tbl.Rows {
		fp := fingerprint(row)
		if seen[fp] {
			removed++
			continue
		}
		seen[fp] = true
		kept = append(kept, row)
	}
	tbl.Rows = kept
	return removed
}

// fingerprint renders a row into a collision-safe key for duplicate
// detection: kind tag plus length-prefixed payload per cell. Time cells
// carry full instant precision; the export rendering truncates to the
// date and would collapse rows that differ only in time of day.
func fingerprint(row []dataset.Value) string {
	var b strings.Builder
	for _, cell := range row {
		s := cell.String()
		if cell.Kind == dataset.KindTime {
			s = cell.T.Format(time.RFC3339Nano)
		}
		fmt.Fprintf(&b, "%d:%d:%s|", cell.Kind, len(s), s)
	}
	return b.String()
}

// coerceNumeric converts text columns where every non-null cell parses
// as a number. Mixed columns stay text; columns holding dates or already
// numeric cells are not candidates.
func coerceNumeric(tbl *dataset.Table) []string {
	var coerced []string
	for col, name := range tbl.Columns {
		candidate := false
		allParse := true
		for i := range tbl.Rows {
			cell := tbl.Rows[i][col]
			switch cell.Kind {
			case dataset.KindNull:
				continue
			case dataset.KindText:
				candidate = true
				if _, ok := dataset.ParseNumber(cell.Str); !ok {
					allParse = false
				}
			default:
				candidate = false
				allParse = false
			}
			if !allParse {
				break
			}
		}
		if !candidate || !allParse {
			continue
		}
		for i := range tbl.Rows {
			cell := tbl.Rows[i][col]
			if cell.Kind == dataset.KindText {
				n, _ := dataset.ParseNumber(cell.Str)
				tbl.Rows[i][col] = dataset.Number(n)
			}
		}
		coerced = append(coerced, name)
	}
	return coerced
}

// dropNullKeys removes rows whose geographic key cannot be resolved:
// any present key column still null after filling. Key columns missing
// from the table entirely do not participate.
func dropNullKeys(tbl *dataset.Table, schema dataset.Schema) int {
	var keyIdx []int
	for _, name := range schema.Keys {
		if idx := tbl.ColumnIndex(name); idx >= 0 {
			keyIdx = append(keyIdx, idx)
		}
	}
	if len(keyIdx) == 0 {
		return 0
	}
	kept := tbl.Rows[:0]
	dropped := 0
	for _, row := range tbl.Rows {
		ok := true
		for _, idx := range keyIdx {
			if row[idx].IsNull() {
				ok = false
				break
			}
		}
		if ok {
			kept = append(kept, row)
		} else {
			dropped++
		}
	}
	tbl.Rows = kept
	return dropped
}
