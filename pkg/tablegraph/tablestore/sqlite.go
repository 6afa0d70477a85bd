package tablestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/randalmurphal/tablegraph/internal/sqlitedb"
	"github.com/randalmurphal/tablegraph/pkg/tablegraph"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS tables (
		run_id     TEXT    PRIMARY KEY,
		source     TEXT    NOT NULL,
		attempts   INTEGER NOT NULL,
		header     TEXT    NOT NULL,
		rows       TEXT    NOT NULL,
		created_at TEXT    NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS qc_reports (
		run_id     TEXT PRIMARY KEY,
		score      REAL NOT NULL,
		report     TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tables_created ON tables(created_at)`,
}

// SQLite stores tables in a SQLite database. Header and rows are kept as
// JSON arrays so any table shape fits one schema.
type SQLite struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

var _ Store = (*SQLite)(nil)

// NewSQLite opens the store at path, a file path or sqlitedb.Memory.
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sqlitedb.Open(ctx, path, sqliteSchema...)
	if err != nil {
		return nil, fmt.Errorf("table store: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Save(ctx context.Context, rec tablegraph.Record) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrStoreClosed
	}

	var header []string
	var rows [][]string
	if rec.Table != nil {
		header, rows = rec.Table.Header, rec.Table.Rows
	}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	rowsJSON, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}

	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tables (run_id, source, attempts, header, rows, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			source     = excluded.source,
			attempts   = excluded.attempts,
			header     = excluded.header,
			rows       = excluded.rows,
			created_at = excluded.created_at
	`, rec.RunID, rec.Source, rec.Attempts, string(headerJSON), string(rowsJSON),
		created.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save table: %w", err)
	}
	return nil
}

func (s *SQLite) SaveReport(ctx context.Context, runID string, r tablegraph.Report) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrStoreClosed
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO qc_reports (run_id, score, report, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			score      = excluded.score,
			report     = excluded.report,
			created_at = excluded.created_at
	`, runID, r.Score, string(data), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, runID string) (tablegraph.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return tablegraph.Record{}, ErrStoreClosed
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, source, attempts, header, rows, created_at
		FROM tables WHERE run_id = ?
	`, runID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return tablegraph.Record{}, ErrNotFound
	}
	if err != nil {
		return tablegraph.Record{}, fmt.Errorf("get table: %w", err)
	}
	return rec, nil
}

func (s *SQLite) Report(ctx context.Context, runID string) (tablegraph.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return tablegraph.Report{}, ErrStoreClosed
	}

	var data string
	err := s.db.QueryRowContext(ctx, `SELECT report FROM qc_reports WHERE run_id = ?`, runID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return tablegraph.Report{}, ErrNotFound
	}
	if err != nil {
		return tablegraph.Report{}, fmt.Errorf("get report: %w", err)
	}

	var r tablegraph.Report
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return tablegraph.Report{}, fmt.Errorf("decode report: %w", err)
	}
	return r, nil
}

func (s *SQLite) List(ctx context.Context) ([]tablegraph.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, source, attempts, header, rows, created_at
		FROM tables ORDER BY created_at, rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	out := []tablegraph.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list tables: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (tablegraph.Record, error) {
	var (
		rec              tablegraph.Record
		header, rows, ts string
		table            tablegraph.Table
	)
	if err := sc.Scan(&rec.RunID, &rec.Source, &rec.Attempts, &header, &rows, &ts); err != nil {
		return rec, err
	}
	if err := json.Unmarshal([]byte(header), &table.Header); err != nil {
		return rec, fmt.Errorf("decode header: %w", err)
	}
	if err := json.Unmarshal([]byte(rows), &table.Rows); err != nil {
		return rec, fmt.Errorf("decode rows: %w", err)
	}
	if table.Header != nil {
		rec.Table = &table
	}

	created, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return rec, fmt.Errorf("parse created_at: %w", err)
	}
	rec.CreatedAt = created
	return rec, nil
}
