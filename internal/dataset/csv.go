package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

// Paths names the delimited source file per dataset kind. Empty entries
// mean the dataset is simply not loaded.
type Paths struct {
	Enrolment   string
	Demographic string
	Biometric   string
}

func (p Paths) forKind(kind Kind) string {
	switch kind {
	case Enrolment:
		return p.Enrolment
	case Demographic:
		return p.Demographic
	case Biometric:
		return p.Biometric
	}
	return ""
}

// Load reads every configured source into memory. Missing (unconfigured)
// sources are tolerated; a configured file that cannot be read or parsed
// is an error.
func Load(paths Paths, log *zap.Logger) (map[Kind]*Dataset, error) {
	if log == nil {
		log = zap.NewNop()
	}
	out := make(map[Kind]*Dataset)
	for _, kind := range Kinds {
		path := paths.forKind(kind)
		if path == "" {
			continue
		}
		ds, err := ReadCSV(path, kind)
		if err != nil {
			return nil, fmt.Errorf("loading %s data: %w", kind, err)
		}
		out[kind] = ds
		log.Info("loaded dataset",
			zap.String("dataset", string(kind)),
			zap.Int("rows", ds.Table.NumRows()),
			zap.Int("columns", len(ds.Table.Columns)))
	}
	return out, nil
}

// ReadCSV reads one delimited file into a Dataset with the default
// schema for its kind. The first record is the header. Cells arrive as
// text or null; type coercion is the cleaner's job. Ragged rows are
// padded with nulls rather than rejected.
func ReadCSV(path string, kind Kind) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: empty file", path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: reading header: %w", path, err)
	}

	tbl := NewTable(header)
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: reading row %d: %w", path, tbl.NumRows()+2, err)
		}
		cells := make([]Value, len(record))
		for i, raw := range record {
			if IsMissingToken(raw) {
				cells[i] = Null()
			} else {
				cells[i] = Text(raw)
			}
		}
		tbl.AppendRow(cells)
	}

	return &Dataset{
		Kind:   kind,
		Schema: DefaultSchema(kind),
		Table:  tbl,
		Source: path,
	}, nil
}

// WriteCSV writes a dataset back out with the same header it was loaded
// with, cleaning applied. Null cells render empty.
func WriteCSV(ds *Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(ds.Table.Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	record := make([]string, len(ds.Table.Columns))
	for _, row := range ds.Table.Rows {
		for i, cell := range row {
			record[i] = cell.String()
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
