// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/frd-engine/internal/frd"
	"github.com/pdiddy/frd-engine/pkg/types"
)

func TestVonMises(t *testing.T) {
	tests := []struct {
		name   string
		sample types.StressSample
		want   float64
	}{
		{"zero tensor", types.StressSample{}, 0},
		{"uniaxial unit", types.StressSample{SXX: 1}, 1},
		{"uniaxial compression", types.StressSample{SXX: -100}, 100},
		{"hydrostatic", types.StressSample{SXX: 5, SYY: 5, SZZ: 5}, 0},
		{"pure shear", types.StressSample{SXY: 1}, math.Sqrt(3)},
		{"biaxial equal", types.StressSample{SXX: 2, SYY: 2}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, VonMises(tt.sample), 1e-12)
		})
	}
}

func TestJoinIsInner(t *testing.T) {
	coords := map[int]types.NodeCoordinate{
		1: {NodeID: 1, X: 1},
		3: {NodeID: 3, Z: 3},
	}
	samples := []types.StressSample{
		{NodeID: 3, SXX: 3},
		{NodeID: 2, SXX: 2},
		{NodeID: 1, SXX: 1},
	}

	rows := Join(coords, samples)
	require.Len(t, rows, 2)
	for _, r := range rows {
		_, ok := coords[r.NodeID]
		assert.True(t, ok, "node %d has no coordinates", r.NodeID)
	}
	assert.Equal(t, 1, rows[0].NodeID)
	assert.Equal(t, 1.0, rows[0].X)
	assert.Equal(t, 3, rows[1].NodeID)
	assert.Equal(t, 3.0, rows[1].Z)
	assert.Equal(t, 3.0, rows[1].VonMises)
}

func TestJoinDuplicateSampleLastWins(t *testing.T) {
	coords := map[int]types.NodeCoordinate{1: {NodeID: 1}}
	rows := Join(coords, []types.StressSample{{NodeID: 1, SXX: 1}, {NodeID: 1, SXX: 4}})
	require.Len(t, rows, 1)
	assert.Equal(t, 4.0, rows[0].SXX)
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   types.Summary
	}{
		{
			name:   "single element",
			values: []float64{42},
			want:   types.Summary{Count: 1, Min: 42, Max: 42, Mean: 42, Std: 0, Median: 42},
		},
		{
			name:   "odd count",
			values: []float64{3, 1, 2},
			want:   types.Summary{Count: 3, Min: 1, Max: 3, Mean: 2, Std: math.Sqrt(2.0 / 3.0), Median: 2},
		},
		{
			name:   "even count uses population std",
			values: []float64{4, 1, 3, 2},
			want:   types.Summary{Count: 4, Min: 1, Max: 4, Mean: 2.5, Std: math.Sqrt(1.25), Median: 2.5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Summarize(tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.want.Count, got.Count)
			assert.InDelta(t, tt.want.Min, got.Min, 1e-12)
			assert.InDelta(t, tt.want.Max, got.Max, 1e-12)
			assert.InDelta(t, tt.want.Mean, got.Mean, 1e-12)
			assert.InDelta(t, tt.want.Std, got.Std, 1e-12)
			assert.InDelta(t, tt.want.Median, got.Median, 1e-12)
		})
	}
}

func TestSummarizeDoesNotReorderInput(t *testing.T) {
	values := []float64{3, 1, 2}
	_, err := Summarize(values)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestSummarizeNoData(t *testing.T) {
	_, err := Summarize(nil)
	assert.True(t, errors.Is(err, ErrNoData))

	_, err = Report(nil)
	assert.True(t, errors.Is(err, ErrNoData))

	_, err = Isovalues(nil, 3)
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestReportDefaultsToAllFields(t *testing.T) {
	rows := []types.NodeResult{{NodeID: 1, SXX: 1, VonMises: 1}, {NodeID: 2, SXX: 3, VonMises: 3}}

	report, err := Report(rows)
	require.NoError(t, err)
	assert.Equal(t, types.AllFields, report.Fields())
	assert.Equal(t, 2.0, report[types.FieldSXX].Mean)
	assert.Equal(t, 0.0, report[types.FieldSYY].Max)

	only, err := Report(rows, types.FieldVonMises)
	require.NoError(t, err)
	assert.Equal(t, []types.Field{types.FieldVonMises}, only.Fields())
}

func TestIsovalues(t *testing.T) {
	values := []float64{0, 10, 20, 30, 40}

	levels, err := Isovalues(values, 3)
	require.NoError(t, err)
	require.Len(t, levels, 3)
	assert.True(t, levels[0] < levels[1] && levels[1] < levels[2])
	for _, l := range levels {
		assert.True(t, l > 0 && l < 40, "level %v outside the open range", l)
	}

	flat, err := Isovalues([]float64{5, 5, 5}, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{5}, flat)
}

// TestEndToEnd parses a two-node file and checks the derived Von Mises
// values and their summary.
func TestEndToEnd(t *testing.T) {
	content := strings.Join([]string{
		"    2C                             2                                     1",
		" -1         1 0.00000E+00 0.00000E+00 0.00000E+00",
		" -1         2 1.00000E+00 0.00000E+00 0.00000E+00",
		" -3",
		"  100CL  101 1.00000E+00           2                     0    1           1",
		" -4  STRESS      6    1",
		" -1         1 1.00000E+02 0.00000E+00 0.00000E+00 0.00000E+00 0.00000E+00 0.00000E+00",
		" -1         2-1.00000E+02 0.00000E+00 0.00000E+00 0.00000E+00 0.00000E+00 0.00000E+00",
		" -3",
		" 9999",
	}, "\n")

	res, err := frd.Parse(strings.NewReader(content), "two-node.frd")
	require.NoError(t, err)
	assert.Len(t, res.Nodes(), 2)

	block, err := res.Block(0)
	require.NoError(t, err)
	assert.Len(t, block.Samples, 2)

	rows := Join(res.Coordinates(), block.Samples)
	require.Len(t, rows, 2)
	assert.InDelta(t, 100, rows[0].VonMises, 1e-9)
	assert.InDelta(t, 100, rows[1].VonMises, 1e-9)

	report, err := Report(rows, types.FieldVonMises)
	require.NoError(t, err)
	vm := report[types.FieldVonMises]
	assert.InDelta(t, 100, vm.Min, 1e-9)
	assert.InDelta(t, 100, vm.Max, 1e-9)
	assert.InDelta(t, 100, vm.Mean, 1e-9)
	assert.InDelta(t, 0, vm.Std, 1e-9)
	assert.InDelta(t, 100, vm.Median, 1e-9)
}
