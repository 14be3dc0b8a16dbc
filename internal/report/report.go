// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report writes statistics reports as text tables, YAML, JSON, and
// Excel workbooks.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/frd-engine/pkg/types"
)

// FieldSummary is one field's statistics in export order.
type FieldSummary struct {
	Field         types.Field `json:"field" yaml:"field"`
	types.Summary `json:",inline" yaml:",inline"`
}

// Document is the serialized form of a statistics report.
type Document struct {
	Source     string         `json:"source,omitempty" yaml:"source,omitempty"`
	Step       int            `json:"step,omitempty" yaml:"step,omitempty"`
	StepTime   float64        `json:"step_time,omitempty" yaml:"step_time,omitempty"`
	NodeCount  int            `json:"node_count" yaml:"node_count"`
	Statistics []FieldSummary `json:"statistics" yaml:"statistics"`
}

// NewDocument orders report by field for serialization.
func NewDocument(source string, step int, stepTime float64, nodeCount int, report types.StatisticsReport) Document {
	doc := Document{Source: source, Step: step, StepTime: stepTime, NodeCount: nodeCount}
	for _, f := range report.Fields() {
		doc.Statistics = append(doc.Statistics, FieldSummary{Field: f, Summary: report[f]})
	}
	return doc
}

// Table prints report as an aligned text table.
func Table(w io.Writer, report types.StatisticsReport) {
	fmt.Fprintf(w, "%-10s  %8s  %14s  %14s  %14s  %14s  %14s\n",
		"FIELD", "COUNT", "MIN", "MAX", "MEAN", "STD", "MEDIAN")
	for _, f := range report.Fields() {
		s := report[f]
		fmt.Fprintf(w, "%-10s  %8d  %14.6g  %14.6g  %14.6g  %14.6g  %14.6g\n",
			f, s.Count, s.Min, s.Max, s.Mean, s.Std, s.Median)
	}
}

// WriteYAML writes doc as YAML.
func WriteYAML(w io.Writer, doc Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

const (
	statisticsSheet = "Statistics"
	nodesSheet      = "Nodes"
)

// WriteXLSX writes a workbook with a Statistics sheet (one row per field)
// and a Nodes sheet holding the joined table.
func WriteXLSX(path string, doc Document, rows []types.NodeResult) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", statisticsSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	statRows := [][]any{{"Field", "Count", "Min", "Max", "Mean", "Std", "Median"}}
	for _, s := range doc.Statistics {
		statRows = append(statRows, []any{string(s.Field), s.Count, s.Min, s.Max, s.Mean, s.Std, s.Median})
	}
	if err := writeRows(f, statisticsSheet, statRows); err != nil {
		return err
	}

	if _, err := f.NewSheet(nodesSheet); err != nil {
		return fmt.Errorf("adding sheet %s: %w", nodesSheet, err)
	}
	nodeRows := [][]any{{"Node", "X", "Y", "Z", "SXX", "SYY", "SZZ", "SXY", "SYZ", "SZX", "Von Mises"}}
	for _, r := range rows {
		nodeRows = append(nodeRows, []any{r.NodeID, r.X, r.Y, r.Z, r.SXX, r.SYY, r.SZZ, r.SXY, r.SYZ, r.SZX, r.VonMises})
	}
	if err := writeRows(f, nodesSheet, nodeRows); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("writing %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}
