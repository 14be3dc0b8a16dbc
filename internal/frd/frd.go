// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package frd reads CalculiX FRD result files. It extracts the node
// coordinate block and every stress result block, recording malformed
// records instead of aborting on them.
package frd

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/frd-engine/pkg/types"
)

var (
	// ErrNoCoordinates reports a file without a usable node coordinate block.
	ErrNoCoordinates = errors.New("no node coordinates found")

	// ErrNoStress reports a file without a stress block holding any record.
	ErrNoStress = errors.New("no stress data found")
)

// timestampLayout matches result files named after the analysed hour,
// e.g. 2025070218.frd.
const timestampLayout = "2006010215"

// SkippedLine records a malformed record dropped by the parser.
type SkippedLine struct {
	Line   int    `json:"line" yaml:"line"`
	Block  string `json:"block" yaml:"block"`
	Text   string `json:"text" yaml:"text"`
	Reason string `json:"reason" yaml:"reason"`
}

func (s SkippedLine) String() string {
	return fmt.Sprintf("line %d (%s): %s", s.Line, s.Block, s.Reason)
}

// StressBlock holds the stress samples of one solver step.
type StressBlock struct {
	// Step is the solver step number from the block header.
	Step int `json:"step" yaml:"step"`

	// Time is the step time from the block header.
	Time float64 `json:"time" yaml:"time"`

	// Samples are ordered by first appearance; a node defined twice keeps
	// the values of its last definition.
	Samples []types.StressSample `json:"samples" yaml:"samples"`
}

// Result is the immutable outcome of parsing one FRD file.
type Result struct {
	source    string
	timestamp time.Time
	coords    map[int]types.NodeCoordinate
	blocks    []StressBlock
	skipped   []SkippedLine
}

// Source returns the name the result was parsed from.
func (r *Result) Source() string { return r.source }

// Timestamp returns the time encoded in a YYYYMMDDHH file name, or the zero
// time when the name carries none.
func (r *Result) Timestamp() time.Time { return r.timestamp }

// NodeCount returns the number of distinct nodes in the coordinate block.
func (r *Result) NodeCount() int { return len(r.coords) }

// Coordinates returns a copy of the coordinate table keyed by node id.
func (r *Result) Coordinates() map[int]types.NodeCoordinate {
	out := make(map[int]types.NodeCoordinate, len(r.coords))
	for id, c := range r.coords {
		out[id] = c
	}
	return out
}

// Nodes returns the coordinates sorted by node id.
func (r *Result) Nodes() []types.NodeCoordinate {
	out := make([]types.NodeCoordinate, 0, len(r.coords))
	for _, c := range r.coords {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NodeID < out[j].NodeID })
	return out
}

// Blocks returns every non-empty stress block in file order.
func (r *Result) Blocks() []StressBlock {
	out := make([]StressBlock, len(r.blocks))
	for i, b := range r.blocks {
		out[i] = StressBlock{
			Step:    b.Step,
			Time:    b.Time,
			Samples: append([]types.StressSample(nil), b.Samples...),
		}
	}
	return out
}

// Block returns the stress block for the given solver step. A step of zero
// or less selects the last block.
func (r *Result) Block(step int) (StressBlock, error) {
	if len(r.blocks) == 0 {
		return StressBlock{}, ErrNoStress
	}
	if step <= 0 {
		return r.Blocks()[len(r.blocks)-1], nil
	}
	for i, b := range r.blocks {
		if b.Step == step {
			return r.Blocks()[i], nil
		}
	}
	return StressBlock{}, fmt.Errorf("stress block for step %d not found (%d blocks)", step, len(r.blocks))
}

// Skipped returns the malformed records dropped while parsing.
func (r *Result) Skipped() []SkippedLine {
	return append([]SkippedLine(nil), r.skipped...)
}

// timestampFromName parses names such as "frd/C000001/2025070218.frd".
func timestampFromName(name string) time.Time {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if len(base) != len(timestampLayout) {
		return time.Time{}
	}
	t, err := time.Parse(timestampLayout, base)
	if err != nil {
		return time.Time{}
	}
	return t
}
