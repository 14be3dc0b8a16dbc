// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package solver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/frd-engine/pkg/types"
)

// Status is the outcome of solving one deck.
type Status int

const (
	StatusSolved Status = iota
	StatusSkipped
	StatusFailed
)

// scratchExts are solver by-products removed after a run.
var scratchExts = []string{".cvg", ".sta"}

// BatchResult holds the outcome of a batch run.
type BatchResult struct {
	Solved  int
	Skipped int
	Failed  int
}

// Total returns the number of decks processed.
func (r BatchResult) Total() int {
	return r.Solved + r.Skipped + r.Failed
}

// HasFailures reports whether any deck failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// SolveDeck solves the deck at inpPath. The series is the deck's parent
// directory name; the .frd lands in cfg.FRDDir/<series>/ and the .dat in
// cfg.DatDir/<series>/. Decks whose .frd already exists are skipped.
func SolveDeck(r Runner, inpPath string, cfg types.SolverConfig, w io.Writer) Status {
	dir := filepath.Dir(inpPath)
	series := filepath.Base(dir)
	job := strings.TrimSuffix(filepath.Base(inpPath), filepath.Ext(inpPath))
	name := series + "/" + job

	frdTarget := filepath.Join(cfg.FRDDir, series, job+".frd")
	if _, err := os.Stat(frdTarget); err == nil {
		fmt.Fprintf(w, "skipped: %s (already solved)\n", name)
		return StatusSkipped
	}

	if err := r.Run(dir, job, io.Discard); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", name, err)
		return StatusFailed
	}

	if err := move(filepath.Join(dir, job+".frd"), frdTarget); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", name, err)
		return StatusFailed
	}
	if cfg.DatDir != "" {
		err := move(filepath.Join(dir, job+".dat"), filepath.Join(cfg.DatDir, series, job+".dat"))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(w, "warning: %s .dat not moved (%v)\n", name, err)
		}
	}
	for _, ext := range scratchExts {
		os.Remove(filepath.Join(dir, job+ext))
	}

	fmt.Fprintf(w, "solved: %s\n", name)
	return StatusSolved
}

// SolveBatch solves each deck in turn, printing per-deck status to w.
func SolveBatch(r Runner, inpPaths []string, cfg types.SolverConfig, w io.Writer) BatchResult {
	var result BatchResult
	for _, p := range inpPaths {
		switch SolveDeck(r, p, cfg, w) {
		case StatusSolved:
			result.Solved++
		case StatusSkipped:
			result.Skipped++
		case StatusFailed:
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d solved, %d skipped, %d failed (total: %d)\n",
		result.Solved, result.Skipped, result.Failed, result.Total())
	return result
}

// FindDecks lists inpDir/*.inp and inpDir/<series>/*.inp.
func FindDecks(inpDir string) ([]string, error) {
	if _, err := os.Stat(inpDir); err != nil {
		return nil, fmt.Errorf("reading deck directory %s: %w", inpDir, err)
	}
	var decks []string
	for _, pattern := range []string{"*.inp", filepath.Join("*", "*.inp")} {
		matches, err := filepath.Glob(filepath.Join(inpDir, pattern))
		if err != nil {
			return nil, err
		}
		decks = append(decks, matches...)
	}
	return decks, nil
}

// move renames src to dst, creating dst's directory.
func move(src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dst), err)
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s: %w", filepath.Base(src), err)
	}
	return nil
}
