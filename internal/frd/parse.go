// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package frd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pdiddy/frd-engine/pkg/types"
)

// Block markers as they appear in the first token of a line.
const (
	keyNodes    = "2C"
	keyElements = "3C"
	keyResult   = "100C"
	keyHeader   = "-4"
	keyColumn   = "-5"
	keyRecord   = "-1"
	keyCont     = "-2"
	keyEnd      = "-3"
	keyEOF      = "9999"

	resultStress = "STRESS"
)

// Node id column widths for the short (0) and long (1) record formats.
const (
	shortIDWidth = 5
	longIDWidth  = 10
)

const maxLineSize = 1024 * 1024

type scanState int

const (
	stateNone scanState = iota
	stateNodes
	stateStress
	stateSkip
)

func (s scanState) String() string {
	switch s {
	case stateNodes:
		return "coordinates"
	case stateStress:
		return "stress"
	}
	return "none"
}

// ParseFile opens, fully reads, and closes the FRD file at path.
func ParseFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	return Parse(f, path)
}

// Parse scans FRD content from r. The source name is kept on the result and
// used to derive its timestamp. It returns ErrNoCoordinates or ErrNoStress
// (possibly wrapped) when the content holds nothing to visualize.
func Parse(r io.Reader, source string) (*Result, error) {
	p := &parser{
		coords:  make(map[int]types.NodeCoordinate),
		idWidth: longIDWidth,
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		p.lineNo++
		if done := p.line(strings.TrimRight(scanner.Text(), "\r")); done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}
	p.closeBlock()

	if !p.sawNodes {
		return nil, fmt.Errorf("%w: missing %s block", ErrNoCoordinates, keyNodes)
	}
	if len(p.coords) == 0 {
		return nil, fmt.Errorf("%w: coordinate block has no valid records", ErrNoCoordinates)
	}
	if !p.sawStress {
		return nil, fmt.Errorf("%w: missing %s block", ErrNoStress, resultStress)
	}
	if len(p.blocks) == 0 {
		return nil, fmt.Errorf("%w: stress blocks have no valid records", ErrNoStress)
	}

	return &Result{
		source:    source,
		timestamp: timestampFromName(source),
		coords:    p.coords,
		blocks:    p.blocks,
		skipped:   p.skipped,
	}, nil
}

// parser carries the scan state across lines.
type parser struct {
	lineNo  int
	state   scanState
	idWidth int

	coords    map[int]types.NodeCoordinate
	sawNodes  bool
	sawStress bool

	// Pending step header from the most recent 100C line.
	stepTime float64
	stepNum  int

	// Current stress block.
	columns []string
	order   []int
	samples map[int]types.StressSample

	blocks  []StressBlock
	skipped []SkippedLine
}

// line handles one input line and reports whether the end-of-data marker
// was reached.
func (p *parser) line(raw string) bool {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return false
	}
	key := fields[0]

	switch {
	case key == keyEOF:
		return true

	case key == keyNodes:
		p.closeBlock()
		p.state = stateNodes
		p.sawNodes = true
		p.idWidth = idWidthFromHeader(fields)

	case key == keyElements:
		p.closeBlock()
		p.state = stateSkip

	case strings.HasPrefix(key, keyResult):
		p.closeBlock()
		p.stepHeader(fields)

	case key == keyHeader:
		p.closeBlock()
		if len(fields) > 1 && fields[1] == resultStress {
			p.state = stateStress
			p.sawStress = true
			p.columns = nil
			p.order = nil
			p.samples = make(map[int]types.StressSample)
		} else {
			p.state = stateSkip
		}

	case key == keyColumn:
		if p.state == stateStress && len(fields) > 1 {
			p.columns = append(p.columns, strings.ToUpper(fields[1]))
		}

	case key == keyEnd:
		p.closeBlock()

	case key == keyCont:
		// Continuation lines only carry element connectivity or components
		// beyond the sixth; neither is read.

	case isRecord(raw, key):
		p.record(raw)
	}

	return false
}

func isRecord(raw, key string) bool {
	if key == keyRecord {
		return true
	}
	// Short-format ids may run into the marker, e.g. " -112345".
	trimmed := strings.TrimLeft(raw, " ")
	return strings.HasPrefix(trimmed, keyRecord) && len(raw) > 3 && raw[1:3] == keyRecord
}

func (p *parser) record(raw string) {
	switch p.state {
	case stateNodes:
		id, vals, err := parseRecord(raw, 3, p.idWidth)
		if err != nil {
			p.skip(raw, err)
			return
		}
		p.coords[id] = types.NodeCoordinate{NodeID: id, X: vals[0], Y: vals[1], Z: vals[2]}

	case stateStress:
		id, vals, err := parseRecord(raw, len(types.StressComponents), p.idWidth)
		if err != nil {
			p.skip(raw, err)
			return
		}
		if _, seen := p.samples[id]; !seen {
			p.order = append(p.order, id)
		}
		p.samples[id] = p.sample(id, vals)
	}
}

// sample maps record values to tensor components. When the block's column
// definitions name all six components they decide the mapping; otherwise
// the fixed FRD order applies.
func (p *parser) sample(id int, vals []float64) types.StressSample {
	idx := columnIndex(p.columns)
	return types.StressSample{
		NodeID: id,
		SXX:    vals[idx[0]],
		SYY:    vals[idx[1]],
		SZZ:    vals[idx[2]],
		SXY:    vals[idx[3]],
		SYZ:    vals[idx[4]],
		SZX:    vals[idx[5]],
	}
}

var identityColumns = [6]int{0, 1, 2, 3, 4, 5}

func columnIndex(columns []string) [6]int {
	if len(columns) < 6 {
		return identityColumns
	}
	names := [6][]string{
		{"SXX"}, {"SYY"}, {"SZZ"}, {"SXY", "SYX"}, {"SYZ", "SZY"}, {"SZX", "SXZ"},
	}
	var idx [6]int
	for i, aliases := range names {
		found := -1
		for j, c := range columns[:6] {
			for _, a := range aliases {
				if c == a {
					found = j
				}
			}
		}
		if found < 0 {
			return identityColumns
		}
		idx[i] = found
	}
	return idx
}

func (p *parser) skip(raw string, err error) {
	p.skipped = append(p.skipped, SkippedLine{
		Line:   p.lineNo,
		Block:  p.state.String(),
		Text:   strings.TrimSpace(raw),
		Reason: err.Error(),
	})
}

// closeBlock ends the current block. Stress blocks without any valid record
// are dropped.
func (p *parser) closeBlock() {
	if p.state == stateStress && len(p.order) > 0 {
		samples := make([]types.StressSample, len(p.order))
		for i, id := range p.order {
			samples[i] = p.samples[id]
		}
		step := p.stepNum
		if step <= 0 {
			step = len(p.blocks) + 1
		}
		p.blocks = append(p.blocks, StressBlock{Step: step, Time: p.stepTime, Samples: samples})
	}
	p.state = stateNone
	p.columns = nil
	p.order = nil
	p.samples = nil
}

// stepHeader reads the step time and number from a 100C line:
//
//	100CL  101 1.00000E+00       486                     0    1           1
func (p *parser) stepHeader(fields []string) {
	p.stepTime = 0
	p.stepNum = 0
	for _, f := range fields[1:] {
		if strings.ContainsAny(f, ".eE") {
			if v, err := strconv.ParseFloat(f, 64); err == nil {
				p.stepTime = v
				break
			}
		}
	}
	if len(fields) >= 6 {
		if n, err := strconv.Atoi(fields[len(fields)-2]); err == nil {
			p.stepNum = n
		}
	}
	if w := idWidthFromHeader(fields); w > 0 {
		p.idWidth = w
	}
}

// idWidthFromHeader reads the record format flag from the last field of a
// 2C or 100C header: 0 is short, 1 is long.
func idWidthFromHeader(fields []string) int {
	if len(fields) < 3 {
		return longIDWidth
	}
	switch fields[len(fields)-1] {
	case "0":
		return shortIDWidth
	default:
		return longIDWidth
	}
}
