// Package planstore persists lowering plans and diagnostics per run in a
// SQLite database, so editors and CI can diff what a change did to the
// decision procedures of a file.
package planstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/funvibe/matchcore/internal/diagnostics"
	"github.com/funvibe/matchcore/internal/mir"
	"github.com/funvibe/matchcore/internal/token"
	"github.com/funvibe/matchcore/internal/wire"
)

// ErrNotFound is returned when no run matches the query.
var ErrNotFound = errors.New("planstore: run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id             TEXT PRIMARY KEY,
	file           TEXT NOT NULL,
	schema_version TEXT NOT NULL,
	created_at     INTEGER NOT NULL,
	has_errors     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_file ON runs(file, created_at);
CREATE TABLE IF NOT EXISTS plans (
	run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	idx         INTEGER NOT NULL,
	owner       TEXT NOT NULL,
	target_type TEXT NOT NULL,
	arm_count   INTEGER NOT NULL,
	body        TEXT NOT NULL,
	PRIMARY KEY (run_id, idx)
);
CREATE TABLE IF NOT EXISTS diagnostics (
	run_id     TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	idx        INTEGER NOT NULL,
	code       TEXT NOT NULL,
	severity   TEXT NOT NULL,
	stage      TEXT NOT NULL,
	message    TEXT NOT NULL,
	file       TEXT NOT NULL,
	span_start INTEGER NOT NULL,
	span_end   INTEGER NOT NULL,
	line       INTEGER NOT NULL,
	col        INTEGER NOT NULL,
	notes      TEXT NOT NULL,
	PRIMARY KEY (run_id, idx)
);
`

// Run is one compilation of one file.
type Run struct {
	ID          string
	File        string
	CreatedAt   time.Time
	Plans       []mir.MatchLoweringPlan
	Diagnostics []diagnostics.Diagnostic
}

// RunInfo is the stored summary of a run.
type RunInfo struct {
	ID            string
	File          string
	SchemaVersion string
	CreatedAt     time.Time
	HasErrors     bool
}

type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens or creates the database at path. ":memory:" gives a private
// in-memory store.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening plan store: %w", err)
	}
	// each connection to ":memory:" is its own database
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring plan store: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating plan store schema: %w", err)
	}
	return &Store{db: db, logger: slog.Default().With(slog.String("component", "planstore"))}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// SaveRun stores run in one transaction and returns its id. A run without
// an id gets a fresh UUID.
func (s *Store) SaveRun(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	hasErrors := 0
	for _, d := range run.Diagnostics {
		if d.IsError() {
			hasErrors = 1
			break
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, file, schema_version, created_at, has_errors) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.File, mir.SchemaVersion, run.CreatedAt.UnixNano(), hasErrors); err != nil {
		return "", fmt.Errorf("saving run: %w", err)
	}
	for i := range run.Plans {
		plan := &run.Plans[i]
		body, err := wire.EncodePlan(plan)
		if err != nil {
			return "", fmt.Errorf("plan %d: %w", i, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO plans (run_id, idx, owner, target_type, arm_count, body) VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, i, plan.Owner, plan.TargetType, plan.ArmCount, string(body)); err != nil {
			return "", fmt.Errorf("saving plan %d: %w", i, err)
		}
	}
	for i, d := range run.Diagnostics {
		notes, err := json.Marshal(d.Notes)
		if err != nil {
			return "", err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO diagnostics (run_id, idx, code, severity, stage, message, file, span_start, span_end, line, col, notes)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, string(d.Code), string(d.Severity), string(d.Stage), d.Message, d.File,
			d.Span.Start, d.Span.End, d.Span.Line, d.Span.Column, string(notes)); err != nil {
			return "", fmt.Errorf("saving diagnostic %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	s.logger.Debug("saved run",
		slog.String("run", run.ID),
		slog.String("file", run.File),
		slog.Int("plans", len(run.Plans)),
		slog.Int("diagnostics", len(run.Diagnostics)))
	return run.ID, nil
}

// Plans returns the plans of a run in their original order.
func (s *Store) Plans(ctx context.Context, runID string) ([]mir.MatchLoweringPlan, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT body FROM plans WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := []mir.MatchLoweringPlan{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		plan, err := wire.DecodePlan([]byte(body))
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", runID, err)
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

// Diagnostics returns the diagnostics of a run in their original order.
func (s *Store) Diagnostics(ctx context.Context, runID string) ([]diagnostics.Diagnostic, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code, severity, stage, message, file, span_start, span_end, line, col, notes
		 FROM diagnostics WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []diagnostics.Diagnostic
	for rows.Next() {
		var (
			d                     diagnostics.Diagnostic
			code, severity, stage string
			notes                 string
			span                  token.Span
		)
		if err := rows.Scan(&code, &severity, &stage, &d.Message, &d.File,
			&span.Start, &span.End, &span.Line, &span.Column, &notes); err != nil {
			return nil, err
		}
		d.Code, d.Severity, d.Stage, d.Span = diagnostics.Code(code), diagnostics.Severity(severity), diagnostics.Stage(stage), span
		if err := json.Unmarshal([]byte(notes), &d.Notes); err != nil {
			return nil, fmt.Errorf("run %s: notes: %w", runID, err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// LatestRun returns the most recent run recorded for file.
func (s *Store) LatestRun(ctx context.Context, file string) (RunInfo, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, file, schema_version, created_at, has_errors FROM runs
		 WHERE file = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`, file)
	info, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunInfo{}, ErrNotFound
	}
	return info, err
}

// Runs lists every run of file, newest first.
func (s *Store) Runs(ctx context.Context, file string) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file, schema_version, created_at, has_errors FROM runs
		 WHERE file = ? ORDER BY created_at DESC, rowid DESC`, file)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RunInfo
	for rows.Next() {
		info, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (RunInfo, error) {
	var (
		info      RunInfo
		created   int64
		hasErrors int
	)
	if err := sc.Scan(&info.ID, &info.File, &info.SchemaVersion, &created, &hasErrors); err != nil {
		return RunInfo{}, err
	}
	info.CreatedAt = time.Unix(0, created)
	info.HasErrors = hasErrors != 0
	return info, nil
}
