// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/frd-engine/pkg/types"
)

// ExportEntry is one result with its statistics.
type ExportEntry struct {
	types.ResultRecord `json:",inline" yaml:",inline"`
	Statistics         types.StatisticsReport `json:"statistics" yaml:"statistics"`
}

// ExportYAML writes every stored result to results/index/export.yaml.
func (s *Store) ExportYAML(ctx context.Context) error {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(s.ExportPath("yaml"), data, 0o644)
}

// ExportJSON writes every stored result to results/index/export.json.
func (s *Store) ExportJSON(ctx context.Context) error {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(s.ExportPath("json"), data, 0o644)
}

// ExportPath returns the export file path for ext.
func (s *Store) ExportPath(ext string) string {
	return filepath.Join(s.resultsDir, indexDir, "export."+ext)
}

func (s *Store) exportEntries(ctx context.Context) ([]ExportEntry, error) {
	results, err := s.Results(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(results))
	for i, r := range results {
		stats, err := s.Statistics(ctx, r.ID)
		if err != nil {
			return nil, fmt.Errorf("querying for export: %w", err)
		}
		entries[i] = ExportEntry{ResultRecord: r, Statistics: stats}
	}
	return entries, nil
}
