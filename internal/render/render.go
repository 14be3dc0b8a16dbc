// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns the joined node table into static visualizations.
// A Scene is built once (heatmap markers or isosurface triangles) and can be
// written to PNG, JPEG, SVG, or PDF, or exported as an STL mesh.
package render

import (
	"fmt"
	"math"

	"github.com/pdiddy/frd-engine/internal/metrics"
	"github.com/pdiddy/frd-engine/pkg/types"
)

// Kind identifies how a scene presents its field.
type Kind string

const (
	KindHeatmap    Kind = "heatmap"
	KindIsosurface Kind = "isosurface"
)

// Defaults applied by Options.withDefaults.
const (
	DefaultWidth      = 1200
	DefaultHeight     = 800
	defaultOpacity    = 0.4
	defaultIsovalues  = 3
	defaultMeshCells  = 48
	defaultNeighbors  = 8
	defaultMarkerSize = 4.0
	defaultAzimuth    = -60.0
	defaultElevation  = 25.0
)

// Options control scene construction.
type Options struct {
	Colorscale types.Colorscale
	Opacity    float64
	Azimuth    float64
	Elevation  float64
	Title      string

	// Levels lists explicit isovalues. When empty, Isovalues evenly spaced
	// quantiles of the field are used.
	Levels    []float64
	Isovalues int

	// MeshCells is the marching cubes resolution along the longest axis.
	MeshCells int

	// Neighbors is the number of nodes blended when interpolating the field.
	Neighbors int

	MarkerSize float64
}

// OptionsFromConfig maps the render configuration onto scene options.
func OptionsFromConfig(cfg types.RenderConfig) Options {
	return Options{
		Colorscale: cfg.Colorscale,
		Opacity:    cfg.Opacity,
		Azimuth:    cfg.Azimuth,
		Elevation:  cfg.Elevation,
		Isovalues:  cfg.Isovalues,
		MeshCells:  cfg.MeshCells,
		Neighbors:  cfg.Neighbors,
	}
}

func (o Options) withDefaults() Options {
	if o.Colorscale == "" {
		o.Colorscale = types.ColorscaleViridis
	}
	if o.Opacity <= 0 || o.Opacity > 1 {
		o.Opacity = defaultOpacity
	}
	if o.Azimuth == 0 && o.Elevation == 0 {
		o.Azimuth = defaultAzimuth
		o.Elevation = defaultElevation
	}
	if o.Isovalues <= 0 {
		o.Isovalues = defaultIsovalues
	}
	if o.MeshCells <= 0 {
		o.MeshCells = defaultMeshCells
	}
	if o.Neighbors <= 0 {
		o.Neighbors = defaultNeighbors
	}
	if o.MarkerSize <= 0 {
		o.MarkerSize = defaultMarkerSize
	}
	return o
}

// Point3 is a position in model space.
type Point3 struct {
	X, Y, Z float64
}

// Marker is one node drawn by a heatmap.
type Marker struct {
	Point3
	Value float64
}

// Triangle is one isosurface facet.
type Triangle struct {
	V      [3]Point3
	Normal Point3
}

// Surface is the triangulated isosurface of one level.
type Surface struct {
	Level     float64
	Triangles []Triangle
}

// Scene is a renderable visualization of one field.
type Scene struct {
	Kind       Kind
	Field      types.Field
	Title      string
	Colorscale types.Colorscale
	Opacity    float64
	MarkerSize float64
	Camera     Camera

	// Min and Max bound the color range.
	Min, Max float64

	// BoundsMin and BoundsMax enclose every node.
	BoundsMin, BoundsMax Point3

	Markers  []Marker
	Surfaces []Surface
}

// TriangleCount returns the number of facets over all surfaces.
func (s *Scene) TriangleCount() int {
	n := 0
	for _, surf := range s.Surfaces {
		n += len(surf.Triangles)
	}
	return n
}

// BuildHeatmap places a marker at every node colored by field.
func BuildHeatmap(rows []types.NodeResult, field types.Field, opts Options) (*Scene, error) {
	s, err := newScene(KindHeatmap, rows, field, opts)
	if err != nil {
		return nil, err
	}
	s.Markers = make([]Marker, len(rows))
	for i, r := range rows {
		v, _ := r.Value(field)
		s.Markers[i] = Marker{Point3: Point3{r.X, r.Y, r.Z}, Value: v}
	}
	return s, nil
}

// BuildIsosurface triangulates the surfaces where the interpolated field
// equals each isovalue.
func BuildIsosurface(rows []types.NodeResult, field types.Field, opts Options) (*Scene, error) {
	s, err := newScene(KindIsosurface, rows, field, opts)
	if err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	levels := opts.Levels
	if len(levels) == 0 {
		levels, err = metrics.Isovalues(metrics.Column(rows, field), opts.Isovalues)
		if err != nil {
			return nil, err
		}
	}

	f := newScalarField(rows, field, opts.Neighbors)
	for _, level := range levels {
		s.Surfaces = append(s.Surfaces, Surface{
			Level:     level,
			Triangles: f.isosurface(level, opts.MeshCells),
		})
	}
	return s, nil
}

func newScene(kind Kind, rows []types.NodeResult, field types.Field, opts Options) (*Scene, error) {
	if len(rows) == 0 {
		return nil, metrics.ErrNoData
	}
	if _, ok := rows[0].Value(field); !ok {
		return nil, fmt.Errorf("unknown field %q", field)
	}
	opts = opts.withDefaults()

	s := &Scene{
		Kind:       kind,
		Field:      field,
		Title:      opts.Title,
		Colorscale: opts.Colorscale,
		Opacity:    opts.Opacity,
		MarkerSize: opts.MarkerSize,
		Camera:     Camera{Azimuth: opts.Azimuth, Elevation: opts.Elevation},
		Min:        math.Inf(1),
		Max:        math.Inf(-1),
		BoundsMin:  Point3{math.Inf(1), math.Inf(1), math.Inf(1)},
		BoundsMax:  Point3{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
	}
	if s.Title == "" {
		s.Title = fmt.Sprintf("%s %s", field, kind)
	}

	for _, r := range rows {
		v, _ := r.Value(field)
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		s.BoundsMin = Point3{math.Min(s.BoundsMin.X, r.X), math.Min(s.BoundsMin.Y, r.Y), math.Min(s.BoundsMin.Z, r.Z)}
		s.BoundsMax = Point3{math.Max(s.BoundsMax.X, r.X), math.Max(s.BoundsMax.Y, r.Y), math.Max(s.BoundsMax.Z, r.Z)}
	}
	return s, nil
}
