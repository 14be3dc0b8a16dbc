// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pdiddy/frd-engine/pkg/types"
)

const resultColumns = `id, series, source_path, timestamp, step, step_time, node_count, skipped_lines`

func scanResult(sc interface{ Scan(...any) error }) (types.ResultRecord, error) {
	var (
		rec types.ResultRecord
		ts  sql.NullString
	)
	err := sc.Scan(&rec.ID, &rec.Series, &rec.SourcePath, &ts,
		&rec.Step, &rec.StepTime, &rec.NodeCount, &rec.SkippedLines)
	if err != nil {
		return rec, err
	}
	rec.Timestamp = parseTime(ts)
	return rec, nil
}

// SeriesNames lists the distinct series held in the store.
func (s *Store) SeriesNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT series FROM results ORDER BY series`)
	if err != nil {
		return nil, fmt.Errorf("querying series: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning series: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Results lists stored results ordered by timestamp. An empty series lists
// every result.
func (s *Store) Results(ctx context.Context, series string) ([]types.ResultRecord, error) {
	query := `SELECT ` + resultColumns + ` FROM results`
	var args []any
	if series != "" {
		query += ` WHERE series = ?`
		args = append(args, series)
	}
	query += ` ORDER BY series, timestamp, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var out []types.ResultRecord
	for rows.Next() {
		rec, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Result returns one stored result.
func (s *Store) Result(ctx context.Context, id string) (types.ResultRecord, error) {
	rec, err := scanResult(s.db.QueryRowContext(ctx,
		`SELECT `+resultColumns+` FROM results WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return rec, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return rec, fmt.Errorf("querying result %s: %w", id, err)
	}
	return rec, nil
}

// Series returns the summary of field for each result of series in time
// order. It backs the time slider.
func (s *Store) Series(ctx context.Context, series string, field types.Field) ([]types.SeriesPoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.timestamp, f.count, f.min, f.max, f.mean, f.std, f.median
		 FROM results r
		 JOIN field_stats f ON f.result_id = r.id
		 WHERE r.series = ? AND f.field = ?
		 ORDER BY r.timestamp, r.id`,
		series, string(field))
	if err != nil {
		return nil, fmt.Errorf("querying series %s: %w", series, err)
	}
	defer rows.Close()

	var points []types.SeriesPoint
	for rows.Next() {
		var (
			p  = types.SeriesPoint{Field: field}
			ts sql.NullString
		)
		err := rows.Scan(&p.ResultID, &ts, &p.Summary.Count, &p.Summary.Min, &p.Summary.Max,
			&p.Summary.Mean, &p.Summary.Std, &p.Summary.Median)
		if err != nil {
			return nil, fmt.Errorf("scanning series point: %w", err)
		}
		p.Timestamp = parseTime(ts)
		points = append(points, p)
	}
	return points, rows.Err()
}

// Statistics returns the stored report of one result.
func (s *Store) Statistics(ctx context.Context, id string) (types.StatisticsReport, error) {
	if _, err := s.Result(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT field, count, min, max, mean, std, median FROM field_stats WHERE result_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("querying statistics of %s: %w", id, err)
	}
	defer rows.Close()

	report := types.StatisticsReport{}
	for rows.Next() {
		var (
			field string
			sum   types.Summary
		)
		if err := rows.Scan(&field, &sum.Count, &sum.Min, &sum.Max, &sum.Mean, &sum.Std, &sum.Median); err != nil {
			return nil, fmt.Errorf("scanning statistics: %w", err)
		}
		report[types.Field(field)] = sum
	}
	return report, rows.Err()
}

// Frame returns the joined node table of one result, ordered by node id.
func (s *Store) Frame(ctx context.Context, id string) ([]types.NodeResult, error) {
	if _, err := s.Result(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT node_id, x, y, z, sxx, syy, szz, sxy, syz, szx, von_mises
		 FROM node_values WHERE result_id = ? ORDER BY node_id`, id)
	if err != nil {
		return nil, fmt.Errorf("querying frame %s: %w", id, err)
	}
	defer rows.Close()

	var out []types.NodeResult
	for rows.Next() {
		var r types.NodeResult
		err := rows.Scan(&r.NodeID, &r.X, &r.Y, &r.Z,
			&r.SXX, &r.SYY, &r.SZZ, &r.SXY, &r.SYZ, &r.SZX, &r.VonMises)
		if err != nil {
			return nil, fmt.Errorf("scanning node: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
