// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Summary holds descriptive statistics over one field. Std is the population
// standard deviation.
type Summary struct {
	Count  int     `json:"count" yaml:"count"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	Mean   float64 `json:"mean" yaml:"mean"`
	Std    float64 `json:"std" yaml:"std"`
	Median float64 `json:"median" yaml:"median"`
}

// StatisticsReport maps field names to their summaries.
type StatisticsReport map[Field]Summary

// Fields returns the report's fields in canonical order.
func (r StatisticsReport) Fields() []Field {
	fields := make([]Field, 0, len(r))
	for _, f := range AllFields {
		if _, ok := r[f]; ok {
			fields = append(fields, f)
		}
	}
	return fields
}

// ResultRecord describes one parsed FRD file held in the results store.
type ResultRecord struct {
	// ID is the series-qualified result name (e.g. "C000001/2025070218").
	ID string `json:"id" yaml:"id"`

	// Series groups results of the same member, usually the parent directory.
	Series string `json:"series" yaml:"series"`

	// SourcePath is the FRD file the result was parsed from.
	SourcePath string `json:"source_path" yaml:"source_path"`

	// Timestamp is derived from a YYYYMMDDHH file name; zero when absent.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`

	// Step is the solver step of the stress block that was stored.
	Step int `json:"step" yaml:"step"`

	// StepTime is the analysis time of that step.
	StepTime float64 `json:"step_time" yaml:"step_time"`

	// NodeCount is the number of joined rows.
	NodeCount int `json:"node_count" yaml:"node_count"`

	// SkippedLines counts malformed records dropped while parsing.
	SkippedLines int `json:"skipped_lines" yaml:"skipped_lines"`
}

// SeriesPoint is one time-slider position: a stored result and the summary
// of the requested field.
type SeriesPoint struct {
	ResultID  string    `json:"result_id" yaml:"result_id"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Field     Field     `json:"field" yaml:"field"`
	Summary   Summary   `json:"summary" yaml:"summary"`
}
