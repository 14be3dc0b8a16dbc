// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics derives Von Mises stress from parsed stress tensors and
// computes descriptive statistics over the joined node table.
package metrics

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pdiddy/frd-engine/pkg/types"
)

// ErrNoData reports an empty sample set. Statistics and renderers return it
// instead of producing NaN summaries or empty images.
var ErrNoData = errors.New("no data")

// VonMises returns the equivalent stress of a tensor:
//
//	sqrt(0.5 * ((sxx-syy)^2 + (syy-szz)^2 + (szz-sxx)^2 + 6*(sxy^2 + syz^2 + szx^2)))
func VonMises(s types.StressSample) float64 {
	dxy := s.SXX - s.SYY
	dyz := s.SYY - s.SZZ
	dzx := s.SZZ - s.SXX
	shear := s.SXY*s.SXY + s.SYZ*s.SYZ + s.SZX*s.SZX
	return math.Sqrt(0.5 * (dxy*dxy + dyz*dyz + dzx*dzx + 6*shear))
}

// Join pairs stress samples with node coordinates by node id. Samples whose
// node has no coordinates are dropped. Rows are sorted by node id and carry
// the Von Mises stress of their sample.
func Join(coords map[int]types.NodeCoordinate, samples []types.StressSample) []types.NodeResult {
	rows := make([]types.NodeResult, 0, len(samples))
	seen := make(map[int]int, len(samples))
	for _, s := range samples {
		c, ok := coords[s.NodeID]
		if !ok {
			continue
		}
		row := types.NodeResult{
			NodeID:   s.NodeID,
			X:        c.X,
			Y:        c.Y,
			Z:        c.Z,
			SXX:      s.SXX,
			SYY:      s.SYY,
			SZZ:      s.SZZ,
			SXY:      s.SXY,
			SYZ:      s.SYZ,
			SZX:      s.SZX,
			VonMises: VonMises(s),
		}
		if i, dup := seen[s.NodeID]; dup {
			rows[i] = row
			continue
		}
		seen[s.NodeID] = len(rows)
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].NodeID < rows[j].NodeID })
	return rows
}

// Column extracts one field from every row.
func Column(rows []types.NodeResult, f types.Field) []float64 {
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		if v, ok := r.Value(f); ok {
			out = append(out, v)
		}
	}
	return out
}

// Summarize computes min, max, mean, population standard deviation, and
// median of values. The median of an even count is the mean of the two
// middle values.
func Summarize(values []float64) (types.Summary, error) {
	if len(values) == 0 {
		return types.Summary{}, ErrNoData
	}

	mean, std := stat.PopMeanStdDev(values, nil)

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	median := sorted[mid]
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}

	return types.Summary{
		Count:  len(values),
		Min:    floats.Min(values),
		Max:    floats.Max(values),
		Mean:   mean,
		Std:    std,
		Median: median,
	}, nil
}

// Report summarizes the requested fields of rows. With no fields it covers
// the six tensor components and Von Mises.
func Report(rows []types.NodeResult, fields ...types.Field) (types.StatisticsReport, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	if len(fields) == 0 {
		fields = types.AllFields
	}

	report := make(types.StatisticsReport, len(fields))
	for _, f := range fields {
		s, err := Summarize(Column(rows, f))
		if err != nil {
			return nil, err
		}
		report[f] = s
	}
	return report, nil
}

// Isovalues returns n evenly spaced interior quantiles of values, e.g. the
// 25th, 50th, and 75th percentiles for n = 3. Duplicate levels are removed.
func Isovalues(values []float64, n int) ([]float64, error) {
	if len(values) == 0 {
		return nil, ErrNoData
	}
	if n <= 0 {
		n = 1
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	levels := make([]float64, 0, n)
	for i := 1; i <= n; i++ {
		p := float64(i) / float64(n+1)
		q := stat.Quantile(p, stat.LinInterp, sorted, nil)
		if len(levels) > 0 && q == levels[len(levels)-1] {
			continue
		}
		levels = append(levels, q)
	}
	return levels, nil
}
