// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/frd-engine/internal/metrics"
	"github.com/pdiddy/frd-engine/pkg/types"
)

// gridRows returns a 3x3x3 lattice whose Von Mises value is the distance
// from the center node.
func gridRows() []types.NodeResult {
	var rows []types.NodeResult
	id := 1
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			for z := 0; z < 3; z++ {
				fx, fy, fz := float64(x), float64(y), float64(z)
				d := math.Sqrt((fx-1)*(fx-1) + (fy-1)*(fy-1) + (fz-1)*(fz-1))
				rows = append(rows, types.NodeResult{NodeID: id, X: fx, Y: fy, Z: fz, SXX: d, VonMises: d})
				id++
			}
		}
	}
	return rows
}

func vec(x, y, z float64) v3.Vec { return v3.Vec{X: x, Y: y, Z: z} }

func TestColormapEndpoints(t *testing.T) {
	m, err := NewColormap(types.ColorscaleViridis)
	require.NoError(t, err)

	lo := m.At(0)
	assert.InDelta(t, 0x44, int(lo.R), 1)
	assert.InDelta(t, 0x01, int(lo.G), 1)
	assert.InDelta(t, 0x54, int(lo.B), 1)

	hi := m.At(1)
	assert.InDelta(t, 0xfd, int(hi.R), 1)
	assert.InDelta(t, 0xe7, int(hi.G), 1)
	assert.InDelta(t, 0x25, int(hi.B), 1)

	assert.Equal(t, m.At(1), m.At(7), "values above the range clamp")
	assert.Equal(t, m.At(0), m.At(math.NaN()))
	assert.Equal(t, m.At(0.5), m.Value(3, 3, 3), "flat range maps to the middle")
}

func TestColormapAllScales(t *testing.T) {
	for _, scale := range []types.Colorscale{
		types.ColorscaleViridis, types.ColorscaleRdBu, types.ColorscaleJet,
		types.ColorscaleHot, types.ColorscaleGreys,
	} {
		_, err := NewColormap(scale)
		assert.NoError(t, err, "scale %s", scale)
	}

	_, err := NewColormap("Rainbow")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown colorscale")
}

func TestProjection(t *testing.T) {
	lo, hi := Point3{-1, -1, -1}, Point3{1, 1, 1}
	p := newProjection(Camera{}, lo, hi, 0, 0, 200, 200)

	cx, cy, depth := p.project(Point3{})
	assert.InDelta(t, 100, cx, 1e-9)
	assert.InDelta(t, 100, cy, 1e-9)
	assert.InDelta(t, 0, depth, 1e-9)

	// Looking down the X axis: +Y is right, +Z is up, +X is toward the viewer.
	sx, _, _ := p.project(Point3{Y: 1})
	assert.Greater(t, sx, cx)
	_, sy, _ := p.project(Point3{Z: 1})
	assert.Less(t, sy, cy)
	_, _, d := p.project(Point3{X: 1})
	assert.Greater(t, d, 0.0)

	for _, c := range boxCorners(lo, hi) {
		x, y, _ := p.project(c)
		assert.True(t, x >= -1e-9 && x <= 200+1e-9 && y >= -1e-9 && y <= 200+1e-9, "corner %v outside the viewport", c)
	}
}

func TestBuildHeatmap(t *testing.T) {
	rows := gridRows()
	s, err := BuildHeatmap(rows, types.FieldVonMises, Options{})
	require.NoError(t, err)

	assert.Equal(t, KindHeatmap, s.Kind)
	assert.Len(t, s.Markers, len(rows))
	assert.Equal(t, 0.0, s.Min)
	assert.InDelta(t, math.Sqrt(3), s.Max, 1e-12)
	assert.Equal(t, Point3{0, 0, 0}, s.BoundsMin)
	assert.Equal(t, Point3{2, 2, 2}, s.BoundsMax)
	assert.Equal(t, types.ColorscaleViridis, s.Colorscale)
	assert.Equal(t, "von_mises heatmap", s.Title)
}

func TestBuildErrors(t *testing.T) {
	_, err := BuildHeatmap(nil, types.FieldVonMises, Options{})
	assert.True(t, errors.Is(err, metrics.ErrNoData))

	_, err = BuildIsosurface(nil, types.FieldVonMises, Options{})
	assert.True(t, errors.Is(err, metrics.ErrNoData))

	_, err = BuildHeatmap(gridRows(), types.Field("pressure"), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field")
}

func TestBuildIsosurface(t *testing.T) {
	s, err := BuildIsosurface(gridRows(), types.FieldVonMises, Options{Levels: []float64{0.8}, MeshCells: 12})
	require.NoError(t, err)

	require.Len(t, s.Surfaces, 1)
	assert.Equal(t, 0.8, s.Surfaces[0].Level)
	assert.NotEmpty(t, s.Surfaces[0].Triangles)
	assert.Equal(t, len(s.Surfaces[0].Triangles), s.TriangleCount())

	// The level set of a distance field stays near the center.
	for _, tri := range s.Surfaces[0].Triangles {
		for _, v := range tri.V {
			assert.True(t, v.X > -0.5 && v.X < 2.5, "vertex %v escaped the mesh", v)
		}
	}
}

func TestBuildIsosurfaceDefaultLevels(t *testing.T) {
	s, err := BuildIsosurface(gridRows(), types.FieldVonMises, Options{MeshCells: 8})
	require.NoError(t, err)
	assert.NotEmpty(t, s.Surfaces)
	assert.LessOrEqual(t, len(s.Surfaces), 3)
}

func TestScalarFieldExactAtNodes(t *testing.T) {
	rows := gridRows()
	f := newScalarField(rows, types.FieldVonMises, 8)
	for _, r := range rows {
		got := f.At(vec(r.X, r.Y, r.Z))
		assert.InDelta(t, r.VonMises, got, 1e-9)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"a.png", FormatPNG, true},
		{"a.JPG", FormatJPEG, true},
		{"a.jpeg", FormatJPEG, true},
		{"a.svg", FormatSVG, true},
		{"a.pdf", FormatPDF, true},
		{"a.gif", "", false},
		{"noext", "", false},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if !tt.ok {
			assert.Error(t, err, tt.path)
			continue
		}
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got)
	}
}

func TestSaveFormats(t *testing.T) {
	heat, err := BuildHeatmap(gridRows(), types.FieldVonMises, Options{})
	require.NoError(t, err)
	iso, err := BuildIsosurface(gridRows(), types.FieldVonMises, Options{Levels: []float64{0.8}, MeshCells: 8})
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "nested", "output")
	tests := []struct {
		name  string
		magic []byte
	}{
		{"scene.png", []byte("\x89PNG")},
		{"scene.jpg", []byte{0xff, 0xd8}},
		{"scene.svg", []byte("<?xml")},
		{"scene.pdf", []byte("%PDF")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, s := range []*Scene{heat, iso} {
				path := filepath.Join(dir, string(s.Kind)+"-"+tt.name)
				require.NoError(t, Save(s, path, 400, 300))

				data, err := os.ReadFile(path)
				require.NoError(t, err)
				assert.True(t, bytes.HasPrefix(data, tt.magic), "%s does not start with %q", path, tt.magic)
			}
		})
	}
}

func TestSaveGrid(t *testing.T) {
	rows := gridRows()
	var scenes []*Scene
	for _, f := range []types.Field{types.FieldSXX, types.FieldVonMises} {
		s, err := BuildHeatmap(rows, f, Options{})
		require.NoError(t, err)
		scenes = append(scenes, s)
	}

	path := filepath.Join(t.TempDir(), "comprehensive.svg")
	require.NoError(t, SaveGrid(scenes, 2, path, 800, 300))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "SXX heatmap")
	assert.Contains(t, string(data), "von_mises heatmap")
}

func TestSaveErrors(t *testing.T) {
	s, err := BuildHeatmap(gridRows(), types.FieldVonMises, Options{})
	require.NoError(t, err)

	dir := t.TempDir()
	assert.Error(t, Save(s, filepath.Join(dir, "scene.bmp"), 400, 300))
	assert.Error(t, Save(s, filepath.Join(dir, "tiny.png"), 40, 30))
	assert.Error(t, SaveGrid(nil, 1, filepath.Join(dir, "none.png"), 400, 300))
}

func TestWriteSTL(t *testing.T) {
	heat, err := BuildHeatmap(gridRows(), types.FieldVonMises, Options{})
	require.NoError(t, err)
	assert.True(t, errors.Is(WriteSTL(heat, filepath.Join(t.TempDir(), "heat.stl")), ErrEmptyMesh))

	iso, err := BuildIsosurface(gridRows(), types.FieldVonMises, Options{Levels: []float64{0.8}, MeshCells: 8})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "mesh", "iso.stl")
	require.NoError(t, WriteSTL(iso, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, "solid von_mises\n"))
	assert.True(t, strings.HasSuffix(text, "endsolid von_mises\n"))
	assert.Equal(t, iso.TriangleCount(), strings.Count(text, "facet normal"))
	assert.Equal(t, 3*iso.TriangleCount(), strings.Count(text, "vertex "))
}
