// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package frd

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// valueWidth is the E12.5 column width of FRD record values.
const valueWidth = 12

// numberPattern matches one integer or float token. Tokens may touch, as in
// "1.00000E+00-2.00000E+00", when a signed value fills its column.
var numberPattern = regexp.MustCompile(`[-+]?(?:\d+\.?\d*|\.\d+)(?:[Ee][-+]?\d+)?`)

// parseRecord reads a " -1" record holding a node id followed by n values.
// Fixed columns are tried first; free-form numeric tokens are the fallback.
func parseRecord(raw string, n, idWidth int) (int, []float64, error) {
	if id, vals, ok := parseFixed(raw, n, idWidth); ok {
		return id, vals, nil
	}
	return parseTokens(raw, n)
}

func parseFixed(raw string, n, idWidth int) (int, []float64, bool) {
	start := 3 + idWidth
	end := start + n*valueWidth
	if len(raw) < end || raw[1:3] != keyRecord {
		return 0, nil, false
	}
	if strings.TrimSpace(raw[end:]) != "" {
		return 0, nil, false
	}

	id, err := strconv.Atoi(strings.TrimSpace(raw[3:start]))
	if err != nil || id <= 0 {
		return 0, nil, false
	}

	vals := make([]float64, n)
	for i := range vals {
		col := strings.TrimSpace(raw[start+i*valueWidth : start+(i+1)*valueWidth])
		v, err := strconv.ParseFloat(col, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, nil, false
		}
		vals[i] = v
	}
	return id, vals, true
}

func parseTokens(raw string, n int) (int, []float64, error) {
	body := strings.TrimSpace(raw)
	body = strings.TrimPrefix(body, keyRecord)

	locs := numberPattern.FindAllStringIndex(body, -1)
	prev := 0
	for i, loc := range locs {
		if gap := strings.TrimSpace(body[prev:loc[0]]); gap != "" {
			return 0, nil, fmt.Errorf("non-numeric value %q", gap)
		}
		// Only a signed value may run into its predecessor.
		if i > 0 && loc[0] == prev && body[loc[0]] != '-' && body[loc[0]] != '+' {
			return 0, nil, fmt.Errorf("malformed number %q", body[locs[i-1][0]:loc[1]])
		}
		prev = loc[1]
	}
	if tail := strings.TrimSpace(body[prev:]); tail != "" {
		return 0, nil, fmt.Errorf("non-numeric value %q", tail)
	}

	if len(locs) != n+1 {
		return 0, nil, fmt.Errorf("expected node id and %d values, found %d fields", n, len(locs))
	}

	idTok := body[locs[0][0]:locs[0][1]]
	id, err := strconv.Atoi(idTok)
	if err != nil {
		return 0, nil, fmt.Errorf("invalid node id %q", idTok)
	}
	if id <= 0 {
		return 0, nil, fmt.Errorf("node id %d is not positive", id)
	}

	vals := make([]float64, n)
	for i := range vals {
		tok := body[locs[i+1][0]:locs[i+1][1]]
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return 0, nil, fmt.Errorf("invalid value %q", tok)
		}
		vals[i] = v
	}
	return id, vals, nil
}
