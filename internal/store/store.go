// Package store persists simulation runs in a SQLite database and
// exports them as CSV or JSON.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const (
	tableRuns    = "runs"
	tableSamples = "samples"
)

// RunMeta describes a stored simulation run.
type RunMeta struct {
	ID         int64     `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Freq       float64   `json:"freq"`
	Rabi       float64   `json:"rabi"`
	Duration   float64   `json:"duration"`
	Amp        float64   `json:"amp"`
	Width      float64   `json:"width"`
	Method     string    `json:"method"`
	Population float64   `json:"population"`
}

type Store struct {
	db *sql.DB
}

// Open opens the run database at path, creating the schema if needed.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := prepareDB(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func prepareDB(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		freq REAL, rabi REAL, duration REAL,
		amp REAL, width REAL,
		method TEXT,
		population REAL
	)`, tableRuns)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	sqlStr = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		run_id INTEGER, idx INTEGER,
		t REAL, population REAL,
		PRIMARY KEY (run_id, idx)
	)`, tableSamples)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// SaveRun records a run and its population trajectory, returning the run ID.
func (s *Store) SaveRun(ctx context.Context, meta RunMeta, times, pops []float64) (int64, error) {
	if len(times) != len(pops) {
		return 0, errors.New("store: times and populations length mismatch")
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "")
	}
	defer tx.Rollback()

	sqlStr := fmt.Sprintf(`INSERT INTO %s (timestamp, freq, rabi, duration, amp, width, method, population)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, tableRuns)
	res, err := tx.ExecContext(ctx, sqlStr,
		meta.Timestamp.UTC().Format(time.RFC3339Nano),
		meta.Freq, meta.Rabi, meta.Duration,
		meta.Amp, meta.Width, meta.Method, meta.Population)
	if err != nil {
		return 0, errors.Wrap(err, "")
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "")
	}

	sqlStr = fmt.Sprintf(`INSERT INTO %s (run_id, idx, t, population) VALUES (?, ?, ?, ?)`, tableSamples)
	stmt, err := tx.PrepareContext(ctx, sqlStr)
	if err != nil {
		return 0, errors.Wrap(err, "")
	}
	defer stmt.Close()
	for i := range times {
		if _, err := stmt.ExecContext(ctx, runID, i, times[i], pops[i]); err != nil {
			return 0, errors.Wrap(err, "")
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "")
	}
	return runID, nil
}

// ListRuns returns all stored runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunMeta, error) {
	sqlStr := fmt.Sprintf(`SELECT id, timestamp, freq, rabi, duration, amp, width, method, population
		FROM %s ORDER BY id DESC`, tableRuns)
	rows, err := s.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer rows.Close()

	var metas []RunMeta
	for rows.Next() {
		m, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		metas = append(metas, m)
	}
	return metas, errors.Wrap(rows.Err(), "")
}

// LoadRun returns the metadata for a single run.
func (s *Store) LoadRun(ctx context.Context, runID int64) (RunMeta, error) {
	sqlStr := fmt.Sprintf(`SELECT id, timestamp, freq, rabi, duration, amp, width, method, population
		FROM %s WHERE id = ?`, tableRuns)
	row := s.db.QueryRowContext(ctx, sqlStr, runID)
	return scanRun(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunMeta, error) {
	var m RunMeta
	var ts string
	err := row.Scan(&m.ID, &ts, &m.Freq, &m.Rabi, &m.Duration, &m.Amp, &m.Width, &m.Method, &m.Population)
	if err != nil {
		return RunMeta{}, errors.Wrap(err, "")
	}
	m.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return RunMeta{}, errors.Wrap(err, "")
	}
	return m, nil
}

// LoadTrajectory returns the stored time grid and populations for a run.
func (s *Store) LoadTrajectory(ctx context.Context, runID int64) ([]float64, []float64, error) {
	sqlStr := fmt.Sprintf(`SELECT t, population FROM %s WHERE run_id = ? ORDER BY idx`, tableSamples)
	rows, err := s.db.QueryContext(ctx, sqlStr, runID)
	if err != nil {
		return nil, nil, errors.Wrap(err, "")
	}
	defer rows.Close()

	var times, pops []float64
	for rows.Next() {
		var t, p float64
		if err := rows.Scan(&t, &p); err != nil {
			return nil, nil, errors.Wrap(err, "")
		}
		times = append(times, t)
		pops = append(pops, p)
	}
	return times, pops, errors.Wrap(rows.Err(), "")
}
