// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// NodeCoordinate is a mesh vertex position read from the coordinate block of
// an FRD file.
type NodeCoordinate struct {
	NodeID int     `json:"node_id" yaml:"node_id"`
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Z      float64 `json:"z" yaml:"z"`
}

// StressSample is the six-component stress tensor of one node, in the fixed
// FRD column order SXX, SYY, SZZ, SXY, SYZ, SZX.
type StressSample struct {
	NodeID int     `json:"node_id" yaml:"node_id"`
	SXX    float64 `json:"sxx" yaml:"sxx"`
	SYY    float64 `json:"syy" yaml:"syy"`
	SZZ    float64 `json:"szz" yaml:"szz"`
	SXY    float64 `json:"sxy" yaml:"sxy"`
	SYZ    float64 `json:"syz" yaml:"syz"`
	SZX    float64 `json:"szx" yaml:"szx"`
}

// NodeResult is one row of the joined coordinate and stress table, with the
// derived Von Mises scalar.
type NodeResult struct {
	NodeID   int     `json:"node_id" yaml:"node_id"`
	X        float64 `json:"x" yaml:"x"`
	Y        float64 `json:"y" yaml:"y"`
	Z        float64 `json:"z" yaml:"z"`
	SXX      float64 `json:"sxx" yaml:"sxx"`
	SYY      float64 `json:"syy" yaml:"syy"`
	SZZ      float64 `json:"szz" yaml:"szz"`
	SXY      float64 `json:"sxy" yaml:"sxy"`
	SYZ      float64 `json:"syz" yaml:"syz"`
	SZX      float64 `json:"szx" yaml:"szx"`
	VonMises float64 `json:"von_mises" yaml:"von_mises"`
}

// Value returns the named field of the row. The second result is false for
// an unknown field.
func (n NodeResult) Value(f Field) (float64, bool) {
	switch f {
	case FieldSXX:
		return n.SXX, true
	case FieldSYY:
		return n.SYY, true
	case FieldSZZ:
		return n.SZZ, true
	case FieldSXY:
		return n.SXY, true
	case FieldSYZ:
		return n.SYZ, true
	case FieldSZX:
		return n.SZX, true
	case FieldVonMises:
		return n.VonMises, true
	}
	return 0, false
}

// Field names a scalar that can be summarized or rendered.
type Field string

const (
	FieldSXX      Field = "SXX"
	FieldSYY      Field = "SYY"
	FieldSZZ      Field = "SZZ"
	FieldSXY      Field = "SXY"
	FieldSYZ      Field = "SYZ"
	FieldSZX      Field = "SZX"
	FieldVonMises Field = "von_mises"
)

// StressComponents lists the raw tensor components in FRD column order.
var StressComponents = []Field{FieldSXX, FieldSYY, FieldSZZ, FieldSXY, FieldSYZ, FieldSZX}

// AllFields lists every field in canonical report order.
var AllFields = []Field{FieldSXX, FieldSYY, FieldSZZ, FieldSXY, FieldSYZ, FieldSZX, FieldVonMises}

// ParseField resolves a user-supplied field name. Matching is case-insensitive
// and accepts the aliases "vm", "vonmises", "mises", and "SXZ".
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sxx":
		return FieldSXX, nil
	case "syy":
		return FieldSYY, nil
	case "szz":
		return FieldSZZ, nil
	case "sxy", "syx":
		return FieldSXY, nil
	case "syz", "szy":
		return FieldSYZ, nil
	case "szx", "sxz":
		return FieldSZX, nil
	case "von_mises", "vonmises", "von-mises", "vm", "mises":
		return FieldVonMises, nil
	}
	return "", fmt.Errorf("unknown field %q: use one of SXX, SYY, SZZ, SXY, SYZ, SZX, von_mises", s)
}
