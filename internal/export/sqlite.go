package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/aggregate"
	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/dataset"
)

// schemaVersion is stamped into PRAGMA user_version so consumers can tell
// which layout they are reading.
const schemaVersion = 1

// SQLiteSink writes the cleaned rows and aggregated metrics into a
// single-file SQLite artifact. The sink is write-only: the pipeline never
// reads the artifact back, it exists for downstream consumers.
type SQLiteSink struct {
	conn *sql.DB
	path string
}

// OpenSink creates (or truncates) the artifact at dir/analysis.db.
func OpenSink(dir string) (*SQLiteSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(dir, "analysis.db")
	// Always start from an empty artifact; this is an export, not a store.
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("resetting artifact: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening artifact: %w", err)
	}
	if _, err := conn.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("stamping schema version: %w", err)
	}
	return &SQLiteSink{conn: conn, path: path}, nil
}

// Close closes the artifact.
func (s *SQLiteSink) Close() error {
	return s.conn.Close()
}

// Path returns the artifact file path.
func (s *SQLiteSink) Path() string {
	return s.path
}

// WriteDataset dumps one cleaned dataset into a table named after its
// kind, every cell rendered as text the way the CSV export renders it.
func (s *SQLiteSink) WriteDataset(ds *dataset.Dataset) error {
	table := fmt.Sprintf("cleaned_%s", ds.Kind)
	cols := make([]string, len(ds.Table.Columns))
	for i, c := range ds.Table.Columns {
		cols[i] = quoteIdent(c) + " TEXT"
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(cols, ", "))
	if _, err := s.conn.Exec(create); err != nil {
		return fmt.Errorf("creating %s: %w", table, err)
	}

	placeholders := strings.TrimRight(strings.Repeat("?,", len(ds.Table.Columns)), ",")
	insert := fmt.Sprintf("INSERT INTO %s VALUES (%s)", table, placeholders)
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	stmt, err := tx.Prepare(insert)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(ds.Table.Columns))
	for _, row := range ds.Table.Rows {
		for i, cell := range row {
			if cell.IsNull() {
				args[i] = nil
			} else {
				args[i] = cell.String()
			}
		}
		if _, err := stmt.Exec(args...); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting into %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// WriteMigration stores the scored migration rows.
func (s *SQLiteSink) WriteMigration(rows []aggregate.MigrationRow) error {
	const create = `CREATE TABLE migration_risk (
		state TEXT, district TEXT,
		enrolment REAL, updates REAL, update_rate REAL, risk REAL
	)`
	if _, err := s.conn.Exec(create); err != nil {
		return fmt.Errorf("creating migration_risk: %w", err)
	}
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	for _, r := range rows {
		if _, err := tx.Exec(
			"INSERT INTO migration_risk VALUES (?, ?, ?, ?, ?, ?)",
			r.State, r.District, r.Enrolment, r.Updates, r.UpdateRate, r.Risk,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting migration row: %w", err)
		}
	}
	return tx.Commit()
}

// WriteCoverage stores the per-state biometric coverage rows.
func (s *SQLiteSink) WriteCoverage(rows []aggregate.CoverageRow) error {
	const create = `CREATE TABLE biometric_coverage (
		state TEXT, total_updates REAL, avg_updates REAL,
		individuals_updated INTEGER, coverage REAL
	)`
	if _, err := s.conn.Exec(create); err != nil {
		return fmt.Errorf("creating biometric_coverage: %w", err)
	}
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	for _, r := range rows {
		if _, err := tx.Exec(
			"INSERT INTO biometric_coverage VALUES (?, ?, ?, ?, ?)",
			r.State, r.TotalUpdates, r.AvgUpdates, r.IndividualsUpdated, r.Coverage,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting coverage row: %w", err)
		}
	}
	return tx.Commit()
}

// quoteIdent quotes a column name for DDL; the extracts use names with
// spaces.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
