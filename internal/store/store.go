// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists parsed FRD results in SQLite so that time series of
// statistics and per-node frames can be served without reparsing.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/frd-engine/internal/frd"
	"github.com/pdiddy/frd-engine/internal/metrics"
	"github.com/pdiddy/frd-engine/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "results.db"
)

// ErrNotFound is returned when a result id is not in the store.
var ErrNotFound = errors.New("result not found")

// Store manages the results SQLite database.
type Store struct {
	db         *sql.DB
	resultsDir string
	step       int
}

// NewStore opens or creates the results database at
// resultsDir/index/results.db and creates the schema if needed.
func NewStore(cfg types.ResultsConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.ResultsDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, resultsDir: cfg.ResultsDir, step: cfg.Step}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS ingest_runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			indexed INTEGER DEFAULT 0,
			updated INTEGER DEFAULT 0,
			skipped INTEGER DEFAULT 0,
			failed INTEGER DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			id TEXT PRIMARY KEY,
			series TEXT NOT NULL,
			source_path TEXT NOT NULL,
			timestamp TEXT,
			step INTEGER,
			step_time REAL,
			node_count INTEGER,
			skipped_lines INTEGER,
			run_id TEXT REFERENCES ingest_runs(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_series ON results(series, timestamp)`,
		`CREATE TABLE IF NOT EXISTS node_values (
			result_id TEXT NOT NULL REFERENCES results(id) ON DELETE CASCADE,
			node_id INTEGER NOT NULL,
			x REAL, y REAL, z REAL,
			sxx REAL, syy REAL, szz REAL,
			sxy REAL, syz REAL, szx REAL,
			von_mises REAL,
			run_id TEXT,
			PRIMARY KEY (result_id, node_id)
		)`,
		`CREATE TABLE IF NOT EXISTS field_stats (
			result_id TEXT NOT NULL REFERENCES results(id) ON DELETE CASCADE,
			field TEXT NOT NULL,
			count INTEGER,
			min REAL, max REAL, mean REAL, std REAL, median REAL,
			run_id TEXT,
			PRIMARY KEY (result_id, field)
		)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			result_id TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IngestSummary holds counts from one ingest run.
type IngestSummary struct {
	RunID   string
	Indexed int
	Updated int
	Skipped int
	Failed  int
	Removed int
}

// Total returns the number of files processed. Removed results are not
// counted since their files no longer exist.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// resultID names a result by its series and file stem.
func resultID(series, path string) string {
	return series + "/" + strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// findFRD lists frdDir/*.frd and frdDir/<series>/*.frd in name order.
func findFRD(frdDir string) ([]string, error) {
	if _, err := os.Stat(frdDir); err != nil {
		return nil, fmt.Errorf("reading FRD directory %s: %w", frdDir, err)
	}
	var paths []string
	for _, pattern := range []string{"*.frd", filepath.Join("*", "*.frd")} {
		matches, err := filepath.Glob(filepath.Join(frdDir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)
	return paths, nil
}

// Ingest parses the FRD files under frdDir and stores them. Files whose
// modification time matches the last ingest are skipped; changed files
// replace their previous rows. Results whose files are gone from frdDir are
// removed. On change it writes export.yaml.
func (s *Store) Ingest(ctx context.Context, frdDir string, w io.Writer) (IngestSummary, error) {
	paths, err := findFRD(frdDir)
	if err != nil {
		return IngestSummary{}, err
	}

	summary := IngestSummary{RunID: uuid.NewString()}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO ingest_runs (id, started_at) VALUES (?, ?)`,
		summary.RunID, time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return summary, fmt.Errorf("recording ingest run: %w", err)
	}

	seen := make(map[string]bool, len(paths))
	for _, path := range paths {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		series := filepath.Base(filepath.Dir(path))
		id := resultID(series, path)
		seen[id] = true

		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE result_id = ?`, id,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", id)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		rec, rows, err := s.load(path, series, id)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			continue
		}

		if err := s.ingestResult(ctx, rec, rows, modTime, summary.RunID); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d nodes)\n", id, rec.NodeCount)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d nodes)\n", id, rec.NodeCount)
			summary.Indexed++
		}
		if rec.SkippedLines > 0 {
			fmt.Fprintf(w, "  %d malformed lines skipped\n", rec.SkippedLines)
		}
	}

	removed, err := s.removeUnseen(ctx, seen)
	if err != nil {
		return summary, err
	}
	for _, id := range removed {
		fmt.Fprintf(w, "removed %s\n", id)
	}
	summary.Removed = len(removed)

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d, removed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed, summary.Removed)

	if _, err := s.db.ExecContext(ctx,
		`UPDATE ingest_runs SET finished_at = ?, indexed = ?, updated = ?, skipped = ?, failed = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed, summary.RunID,
	); err != nil {
		return summary, fmt.Errorf("recording ingest run: %w", err)
	}

	if summary.Indexed > 0 || summary.Updated > 0 || summary.Removed > 0 {
		if err := s.ExportYAML(ctx); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}

	return summary, nil
}

// removeUnseen deletes every stored result whose id is not in seen and
// returns the deleted ids in order.
func (s *Store) removeUnseen(ctx context.Context, seen map[string]bool) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT result_id FROM indexing_status ORDER BY result_id`)
	if err != nil {
		return nil, fmt.Errorf("listing indexed results: %w", err)
	}
	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning indexed result: %w", err)
		}
		if !seen[id] {
			stale = append(stale, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing indexed results: %w", err)
	}
	if len(stale) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, id := range stale {
		// Cascades to node_values and field_stats.
		if _, err := tx.ExecContext(ctx, `DELETE FROM results WHERE id = ?`, id); err != nil {
			return nil, fmt.Errorf("removing %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM indexing_status WHERE result_id = ?`, id); err != nil {
			return nil, fmt.Errorf("removing %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing removal: %w", err)
	}
	return stale, nil
}

// load parses one file and joins the configured stress block.
func (s *Store) load(path, series, id string) (types.ResultRecord, []types.NodeResult, error) {
	res, err := frd.ParseFile(path)
	if err != nil {
		return types.ResultRecord{}, nil, err
	}
	block, err := res.Block(s.step)
	if err != nil {
		return types.ResultRecord{}, nil, err
	}
	rows := metrics.Join(res.Coordinates(), block.Samples)
	if len(rows) == 0 {
		return types.ResultRecord{}, nil, fmt.Errorf("no stress sample matches a node coordinate: %w", metrics.ErrNoData)
	}

	rec := types.ResultRecord{
		ID:           id,
		Series:       series,
		SourcePath:   path,
		Timestamp:    res.Timestamp(),
		Step:         block.Step,
		StepTime:     block.Time,
		NodeCount:    len(rows),
		SkippedLines: len(res.Skipped()),
	}
	return rec, rows, nil
}

func (s *Store) ingestResult(ctx context.Context, rec types.ResultRecord, rows []types.NodeResult, modTime, runID string) error {
	report, err := metrics.Report(rows)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Cascades to node_values and field_stats.
	if _, err := tx.ExecContext(ctx, `DELETE FROM results WHERE id = ?`, rec.ID); err != nil {
		return fmt.Errorf("deleting old result: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO results (id, series, source_path, timestamp, step, step_time, node_count, skipped_lines, run_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Series, rec.SourcePath, formatTime(rec.Timestamp),
		rec.Step, rec.StepTime, rec.NodeCount, rec.SkippedLines, runID,
	)
	if err != nil {
		return fmt.Errorf("inserting result: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO node_values (result_id, node_id, x, y, z, sxx, syy, szz, sxy, syz, szx, von_mises, run_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err := stmt.ExecContext(ctx,
			rec.ID, r.NodeID, r.X, r.Y, r.Z,
			r.SXX, r.SYY, r.SZZ, r.SXY, r.SYZ, r.SZX, r.VonMises, runID,
		)
		if err != nil {
			return fmt.Errorf("inserting node %d: %w", r.NodeID, err)
		}
	}

	for _, f := range report.Fields() {
		sum := report[f]
		_, err := tx.ExecContext(ctx,
			`INSERT INTO field_stats (result_id, field, count, min, max, mean, std, median, run_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, string(f), sum.Count, sum.Min, sum.Max, sum.Mean, sum.Std, sum.Median, runID,
		)
		if err != nil {
			return fmt.Errorf("inserting %s statistics: %w", f, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (result_id, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(result_id) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		rec.ID, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}
