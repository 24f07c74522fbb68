package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/forest-guardian/urban-heat-island/internal/correlation"
	"github.com/forest-guardian/urban-heat-island/internal/sample"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA foreign_keys=ON",
}

// Store persists sample tables and correlation results of pipeline runs.
type Store struct {
	db *sql.DB
}

// Run is the metadata row of one pipeline execution.
type Run struct {
	ID        string
	Name      string
	Sensor    string
	Region    string
	Start     time.Time
	End       time.Time
	Images    int
	CreatedAt time.Time
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps the pragmas in effect for every statement.
	db.SetMaxOpenConns(1)
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// CreateRun inserts run, assigning a new ID when it has none, and returns the ID.
func (s *Store) CreateRun(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, name, sensor, region, start_date, end_date, images) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Name, run.Sensor, run.Region,
		run.Start.Format(time.DateOnly), run.End.Format(time.DateOnly), run.Images)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return run.ID, nil
}

func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, name, sensor, region, start_date, end_date, images, created_at FROM runs ORDER BY created_at, run_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			run                   Run
			start, end, createdAt string
		)
		if err := rows.Scan(&run.ID, &run.Name, &run.Sensor, &run.Region, &start, &end, &run.Images, &createdAt); err != nil {
			return nil, err
		}
		if run.Start, err = time.Parse(time.DateOnly, start); err != nil {
			return nil, err
		}
		if run.End, err = time.Parse(time.DateOnly, end); err != nil {
			return nil, err
		}
		run.CreatedAt = parseTimestamp(createdAt)
		out = append(out, run)
	}
	return out, rows.Err()
}

// parseTimestamp accepts both the driver's RFC 3339 rendering and the raw
// CURRENT_TIMESTAMP text.
func parseTimestamp(v string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.DateTime} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

// SaveSample stores every cell of smp in a single transaction.
func (s *Store) SaveSample(ctx context.Context, runID string, smp *sample.Sample) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO samples (run_id, row_idx, col_idx, band, x, y, lon, lat, value) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, row := range smp.Rows {
		for j, band := range smp.Columns {
			if _, err := stmt.ExecContext(ctx, runID, i, j, band, row.X, row.Y, row.Lon, row.Lat, row.Values[j]); err != nil {
				return fmt.Errorf("failed to insert sample row %d: %w", i, err)
			}
		}
	}
	return tx.Commit()
}

// LoadSample rebuilds the sample table of a run in its original row order.
func (s *Store) LoadSample(ctx context.Context, runID string) (*sample.Sample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT row_idx, col_idx, band, x, y, lon, lat, value FROM samples WHERE run_id = ? ORDER BY row_idx, col_idx`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := &sample.Sample{}
	for rows.Next() {
		var (
			rowIdx, colIdx int
			band           string
			row            sample.Row
			value          float64
		)
		if err := rows.Scan(&rowIdx, &colIdx, &band, &row.X, &row.Y, &row.Lon, &row.Lat, &value); err != nil {
			return nil, err
		}
		if rowIdx == 0 {
			out.Columns = append(out.Columns, band)
		}
		if colIdx == 0 {
			out.Rows = append(out.Rows, row)
		}
		last := &out.Rows[len(out.Rows)-1]
		last.Values = append(last.Values, value)
	}
	return out, rows.Err()
}

func (s *Store) SaveCorrelation(ctx context.Context, runID string, res correlation.Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO correlations (run_id, x_band, y_band, n, r, r2) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, res.X, res.Y, res.N, res.R, res.R2)
	if err != nil {
		return fmt.Errorf("failed to insert correlation: %w", err)
	}
	return nil
}

func (s *Store) Correlations(ctx context.Context, runID string) ([]correlation.Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT x_band, y_band, n, r, r2 FROM correlations WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []correlation.Result
	for rows.Next() {
		var res correlation.Result
		if err := rows.Scan(&res.X, &res.Y, &res.N, &res.R, &res.R2); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
