// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crack evaluates the thermal crack index (TCI) of early-age
// concrete: the ratio of stress to the tensile strength reached at a given
// age, with the derived crack probability and risk level.
package crack

import (
	"fmt"
	"math"

	"github.com/pdiddy/frd-engine/internal/metrics"
	"github.com/pdiddy/frd-engine/pkg/types"
)

// DefaultFC28 is the 28-day compressive strength assumed when none is given.
const DefaultFC28 = 30.0

// minTensileStrength is the floor applied to tensile strength, in MPa.
const minTensileStrength = 0.1

// TensileStrength returns the tensile strength in MPa at ageDays for
// concrete with 28-day compressive strength fc28 (MPa). The 28-day tensile
// strength is taken as 10% of fc28 and develops with age following the
// ACI 209 hyperbolic form up to 28 days and a logarithmic gain of up to 30%
// afterwards.
func TensileStrength(ageDays, fc28 float64) float64 {
	if ageDays <= 0 {
		return 0
	}
	fct28 := 0.1 * fc28

	var fct float64
	if ageDays <= 28 {
		r := ageDays / 28
		fct = fct28 * r / (4 + 0.85*r)
	} else {
		ratio := 1 + 0.2*math.Log(ageDays/28)/math.Log(365.0/28)
		fct = fct28 * math.Min(ratio, 1.3)
	}
	return math.Max(fct, minTensileStrength)
}

// Tensile strength development curves.
const (
	FormulaACI = "aci"
	FormulaCEB = "ceb"
	FormulaKCI = "kci"
)

// Formulas lists the supported development curves.
var Formulas = []string{FormulaACI, FormulaCEB, FormulaKCI}

// CEBStrength returns fct28 * sqrt(t / (a + b*t)), the CEB-FIP 1990
// development of tensile strength.
func CEBStrength(ageDays, fct28, a, b float64) float64 {
	if ageDays <= 0 {
		return 0
	}
	d := a + b*ageDays
	if d <= 0 {
		return minTensileStrength
	}
	return math.Max(fct28*math.Sqrt(ageDays/d), minTensileStrength)
}

// KCIStrength returns fct28 * sqrt(t / 28), the KCI/KS empirical
// development. The curve is defined up to 28 days and held at fct28 after.
func KCIStrength(ageDays, fct28 float64) float64 {
	if ageDays <= 0 {
		return 0
	}
	r := math.Min(ageDays/28, 1)
	return math.Max(fct28*math.Sqrt(r), minTensileStrength)
}

// StrengthAt returns the tensile strength at cfg.AgeDays using the curve
// named by cfg.Formula. FCT28, when set, overrides the ACI rule of 10% of
// FC28 for the CEB and KCI curves.
func StrengthAt(cfg types.CrackConfig) (float64, error) {
	fc28 := cfg.FC28
	if fc28 <= 0 {
		fc28 = DefaultFC28
	}
	fct28 := cfg.FCT28
	if fct28 <= 0 {
		fct28 = 0.1 * fc28
	}
	a, b := cfg.A, cfg.B
	if a == 0 {
		a = 1
	}
	if b == 0 {
		b = 1
	}

	switch cfg.Formula {
	case "", FormulaACI:
		return TensileStrength(cfg.AgeDays, fc28), nil
	case FormulaCEB:
		return CEBStrength(cfg.AgeDays, fct28, a, b), nil
	case FormulaKCI:
		return KCIStrength(cfg.AgeDays, fct28), nil
	default:
		return 0, fmt.Errorf("unknown strength formula %q (want one of %v)", cfg.Formula, Formulas)
	}
}

// Index returns |stress| / fct. A non-positive strength yields +Inf.
func Index(stress, fct float64) float64 {
	if fct <= 0 {
		return math.Inf(1)
	}
	return math.Abs(stress) / fct
}

// Probability maps an index to a crack probability in [0, 1] by piecewise
// linear interpolation.
func Probability(tci float64) float64 {
	switch {
	case tci <= 0.5:
		return 0
	case tci <= 0.8:
		return 0.1 * (tci - 0.5) / 0.3
	case tci <= 1.0:
		return 0.1 + 0.4*(tci-0.8)/0.2
	case tci <= 1.5:
		return 0.5 + 0.4*(tci-1.0)/0.5
	default:
		return math.Min(0.9+0.1*(tci-1.5)/0.5, 1.0)
	}
}

// Level is a crack risk classification.
type Level string

const (
	LevelSafe    Level = "safe"
	LevelCaution Level = "caution"
	LevelWarning Level = "warning"
	LevelDanger  Level = "danger"
)

// Levels lists risk levels from lowest to highest.
var Levels = []Level{LevelSafe, LevelCaution, LevelWarning, LevelDanger}

var levelColors = map[Level]string{
	LevelSafe:    "#22c55e",
	LevelCaution: "#eab308",
	LevelWarning: "#f97316",
	LevelDanger:  "#ef4444",
}

// Color returns the display color of the level as a hex string.
func (l Level) Color() string { return levelColors[l] }

// Risk classifies an index.
func Risk(tci float64) Level {
	switch {
	case tci < 0.5:
		return LevelSafe
	case tci < 0.8:
		return LevelCaution
	case tci < 1.0:
		return LevelWarning
	default:
		return LevelDanger
	}
}

// Assessment is the crack evaluation of one node.
type Assessment struct {
	NodeID      int     `json:"node_id" yaml:"node_id"`
	Stress      float64 `json:"stress_mpa" yaml:"stress_mpa"`
	Index       float64 `json:"tci" yaml:"tci"`
	Probability float64 `json:"probability" yaml:"probability"`
	Level       Level   `json:"level" yaml:"level"`
}

// Summary aggregates assessments over all nodes.
type Summary struct {
	AgeDays         float64       `json:"age_days" yaml:"age_days"`
	Formula         string        `json:"formula" yaml:"formula"`
	TensileStrength float64       `json:"tensile_strength_mpa" yaml:"tensile_strength_mpa"`
	Field           types.Field   `json:"field" yaml:"field"`
	Counts          map[Level]int `json:"counts" yaml:"counts"`
	MaxIndex        float64       `json:"max_tci" yaml:"max_tci"`
	MaxNode         int           `json:"max_node" yaml:"max_node"`
	Assessments     []Assessment  `json:"assessments,omitempty" yaml:"assessments,omitempty"`
}

// Assess evaluates every row of the joined table. Stress values are read
// from field and multiplied by cfg.StressScale to obtain MPa.
func Assess(rows []types.NodeResult, field types.Field, cfg types.CrackConfig) (Summary, error) {
	if len(rows) == 0 {
		return Summary{}, metrics.ErrNoData
	}
	if cfg.AgeDays <= 0 {
		return Summary{}, fmt.Errorf("concrete age must be positive, got %g days", cfg.AgeDays)
	}
	fct, err := StrengthAt(cfg)
	if err != nil {
		return Summary{}, err
	}
	scale := cfg.StressScale
	if scale == 0 {
		scale = 1
	}
	formula := cfg.Formula
	if formula == "" {
		formula = FormulaACI
	}

	sum := Summary{
		AgeDays:         cfg.AgeDays,
		Formula:         formula,
		TensileStrength: fct,
		Field:           field,
		Counts:          make(map[Level]int, len(Levels)),
		MaxNode:         rows[0].NodeID,
	}

	for _, r := range rows {
		v, ok := r.Value(field)
		if !ok {
			return Summary{}, fmt.Errorf("unknown field %q", field)
		}
		stress := v * scale
		tci := Index(stress, fct)
		a := Assessment{
			NodeID:      r.NodeID,
			Stress:      stress,
			Index:       tci,
			Probability: Probability(tci),
			Level:       Risk(tci),
		}
		sum.Assessments = append(sum.Assessments, a)
		sum.Counts[a.Level]++
		if tci > sum.MaxIndex {
			sum.MaxIndex = tci
			sum.MaxNode = r.NodeID
		}
	}
	return sum, nil
}
