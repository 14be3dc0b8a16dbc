// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crack

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/frd-engine/internal/metrics"
	"github.com/pdiddy/frd-engine/pkg/types"
)

func TestTensileStrength(t *testing.T) {
	tests := []struct {
		name string
		age  float64
		want float64
	}{
		{"not yet cast", 0, 0},
		{"at 28 days", 28, 3.0 / 4.85},
		{"one year caps gain at 20%", 365, 3.0 * 1.2},
		{"very old capped at 30%", 1e9, 3.0 * 1.3},
		{"floored at 0.1 MPa", 0.01, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, TensileStrength(tt.age, 30), 1e-9)
		})
	}
}

func TestIndex(t *testing.T) {
	assert.InDelta(t, 0.5, Index(-1, 2), 1e-12)
	assert.True(t, math.IsInf(Index(1, 0), 1))
}

func TestProbability(t *testing.T) {
	tests := []struct {
		tci  float64
		want float64
	}{
		{0, 0},
		{0.5, 0},
		{0.8, 0.1},
		{1.0, 0.5},
		{1.5, 0.9},
		{2.0, 1.0},
		{10, 1.0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Probability(tt.tci), 1e-9, "tci=%v", tt.tci)
	}
}

func TestRisk(t *testing.T) {
	assert.Equal(t, LevelSafe, Risk(0.49))
	assert.Equal(t, LevelCaution, Risk(0.5))
	assert.Equal(t, LevelWarning, Risk(0.9))
	assert.Equal(t, LevelDanger, Risk(1.0))
	assert.Equal(t, "#ef4444", LevelDanger.Color())
}

func TestAssess(t *testing.T) {
	rows := []types.NodeResult{
		{NodeID: 1, VonMises: 0.1e6},
		{NodeID: 2, VonMises: 5e6},
	}
	cfg := types.CrackConfig{AgeDays: 365, FC28: 30, StressScale: 1e-6}

	sum, err := Assess(rows, types.FieldVonMises, cfg)
	require.NoError(t, err)

	assert.InDelta(t, 3.6, sum.TensileStrength, 1e-9)
	require.Len(t, sum.Assessments, 2)
	assert.Equal(t, 1, sum.Counts[LevelSafe])
	assert.Equal(t, 1, sum.Counts[LevelDanger])
	assert.Equal(t, 2, sum.MaxNode)
	assert.InDelta(t, 5/3.6, sum.MaxIndex, 1e-9)
}

func TestAssessErrors(t *testing.T) {
	_, err := Assess(nil, types.FieldVonMises, types.CrackConfig{AgeDays: 3})
	assert.True(t, errors.Is(err, metrics.ErrNoData))

	_, err = Assess([]types.NodeResult{{NodeID: 1}}, types.FieldVonMises, types.CrackConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "age must be positive")
}

func TestStrengthAt(t *testing.T) {
	tests := []struct {
		name string
		cfg  types.CrackConfig
		want float64
	}{
		{"default is aci", types.CrackConfig{AgeDays: 28, FC28: 30}, 3.0 / 4.85},
		{"aci ignores fct28", types.CrackConfig{AgeDays: 28, FC28: 30, FCT28: 5, Formula: FormulaACI}, 3.0 / 4.85},
		{"ceb default parameters", types.CrackConfig{AgeDays: 7, FCT28: 2, Formula: FormulaCEB}, 2 * math.Sqrt(7.0/8)},
		{"ceb custom parameters", types.CrackConfig{AgeDays: 28, FCT28: 2, A: 4, B: 0.85, Formula: FormulaCEB}, 2 * math.Sqrt(28/(4+0.85*28))},
		{"ceb derives fct28 from fc28", types.CrackConfig{AgeDays: 1, FC28: 40, Formula: FormulaCEB}, 4 * math.Sqrt(0.5)},
		{"kci at 7 days", types.CrackConfig{AgeDays: 7, FCT28: 2, Formula: FormulaKCI}, 2 * 0.5},
		{"kci at 28 days", types.CrackConfig{AgeDays: 28, FCT28: 2, Formula: FormulaKCI}, 2},
		{"kci held after 28 days", types.CrackConfig{AgeDays: 90, FCT28: 2, Formula: FormulaKCI}, 2},
		{"kci floored", types.CrackConfig{AgeDays: 0.001, FCT28: 2, Formula: FormulaKCI}, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StrengthAt(tt.cfg)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestStrengthAtUnknownFormula(t *testing.T) {
	_, err := StrengthAt(types.CrackConfig{AgeDays: 7, Formula: "eurocode"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown strength formula")

	_, err = Assess([]types.NodeResult{{NodeID: 1}}, types.FieldVonMises,
		types.CrackConfig{AgeDays: 7, Formula: "eurocode"})
	require.Error(t, err)
}

func TestAssessFormula(t *testing.T) {
	rows := []types.NodeResult{{NodeID: 1, VonMises: 1.5}}
	cfg := types.CrackConfig{AgeDays: 7, FCT28: 2, Formula: FormulaKCI}

	sum, err := Assess(rows, types.FieldVonMises, cfg)
	require.NoError(t, err)
	assert.Equal(t, FormulaKCI, sum.Formula)
	assert.InDelta(t, 1.0, sum.TensileStrength, 1e-9)
	assert.InDelta(t, 1.5, sum.MaxIndex, 1e-9)
	assert.Equal(t, LevelDanger, sum.Assessments[0].Level)

	sum, err = Assess(rows, types.FieldVonMises, types.CrackConfig{AgeDays: 7})
	require.NoError(t, err)
	assert.Equal(t, FormulaACI, sum.Formula)
}
