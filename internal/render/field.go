// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/dhconnelly/rtreego"

	"github.com/pdiddy/frd-engine/pkg/types"
)

// nodeTolerance is the half-width of the rectangle indexing each node.
const nodeTolerance = 1e-9

// sample is one node value stored in the spatial index.
type sample struct {
	at    rtreego.Point
	value float64
}

func (s *sample) Bounds() rtreego.Rect { return s.at.ToRect(nodeTolerance) }

// scalarField interpolates node values at arbitrary points by inverse
// distance weighting over the nearest nodes.
type scalarField struct {
	tree      *rtreego.Rtree
	neighbors int
	bounds    sdf.Box3
}

func newScalarField(rows []types.NodeResult, field types.Field, neighbors int) *scalarField {
	objs := make([]rtreego.Spatial, 0, len(rows))
	lo := v3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi := v3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, r := range rows {
		v, _ := r.Value(field)
		objs = append(objs, &sample{at: rtreego.Point{r.X, r.Y, r.Z}, value: v})
		lo = v3.Vec{X: math.Min(lo.X, r.X), Y: math.Min(lo.Y, r.Y), Z: math.Min(lo.Z, r.Z)}
		hi = v3.Vec{X: math.Max(hi.X, r.X), Y: math.Max(hi.Y, r.Y), Z: math.Max(hi.Z, r.Z)}
	}
	if neighbors > len(rows) {
		neighbors = len(rows)
	}

	// Flat meshes still need volume for marching cubes.
	pad := 0.05 * math.Max(hi.X-lo.X, math.Max(hi.Y-lo.Y, hi.Z-lo.Z))
	if pad == 0 {
		pad = 1
	}
	lo = v3.Vec{X: lo.X - pad, Y: lo.Y - pad, Z: lo.Z - pad}
	hi = v3.Vec{X: hi.X + pad, Y: hi.Y + pad, Z: hi.Z + pad}

	return &scalarField{
		tree:      rtreego.NewTree(3, 25, 50, objs...),
		neighbors: neighbors,
		bounds:    sdf.Box3{Min: lo, Max: hi},
	}
}

// At returns the interpolated value at p.
func (f *scalarField) At(p v3.Vec) float64 {
	near := f.tree.NearestNeighbors(f.neighbors, rtreego.Point{p.X, p.Y, p.Z})
	var sum, weights float64
	for _, obj := range near {
		s, ok := obj.(*sample)
		if !ok {
			continue
		}
		dx, dy, dz := s.at[0]-p.X, s.at[1]-p.Y, s.at[2]-p.Z
		d2 := dx*dx + dy*dy + dz*dz
		if d2 < 1e-18 {
			return s.value
		}
		w := 1 / d2
		sum += w * s.value
		weights += w
	}
	if weights == 0 {
		return 0
	}
	return sum / weights
}

// levelSet presents one isovalue of the field as a signed distance
// function: negative where the field exceeds the level.
type levelSet struct {
	field *scalarField
	level float64
}

func (l *levelSet) Evaluate(p v3.Vec) float64 { return l.level - l.field.At(p) }
func (l *levelSet) BoundingBox() sdf.Box3    { return l.field.bounds }

// isosurface triangulates the level set with uniform marching cubes.
func (f *scalarField) isosurface(level float64, cells int) []Triangle {
	tris := render.ToTriangles(&levelSet{field: f, level: level}, render.NewMarchingCubesUniform(cells))

	out := make([]Triangle, 0, len(tris))
	for _, tri := range tris {
		n := tri.Normal()
		var t Triangle
		for j := 0; j < 3; j++ {
			v := tri[j]
			t.V[j] = Point3{v.X, v.Y, v.Z}
		}
		t.Normal = Point3{n.X, n.Y, n.Z}
		out = append(out, t)
	}
	return out
}
