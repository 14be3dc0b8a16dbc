// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import "math"

// Camera is an orthographic view. Azimuth rotates about the Z axis and
// Elevation tilts above the XY plane, both in degrees.
type Camera struct {
	Azimuth   float64 `json:"azimuth" yaml:"azimuth"`
	Elevation float64 `json:"elevation" yaml:"elevation"`
}

// basis returns the screen right, screen up, and toward-viewer unit vectors.
func (c Camera) basis() (right, up, view Point3) {
	az := c.Azimuth * math.Pi / 180
	el := c.Elevation * math.Pi / 180
	view = Point3{math.Cos(el) * math.Cos(az), math.Cos(el) * math.Sin(az), math.Sin(el)}
	right = Point3{-math.Sin(az), math.Cos(az), 0}
	up = Point3{-math.Sin(el) * math.Cos(az), -math.Sin(el) * math.Sin(az), math.Cos(el)}
	return right, up, view
}

func dot(a, b Point3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

// projection maps model points into a pixel rectangle, preserving aspect.
type projection struct {
	right, up, view Point3
	center          Point3
	scale           float64
	cx, cy          float64
}

// newProjection fits the box [lo, hi] into the rectangle at (x, y) of size
// w by h.
func newProjection(cam Camera, lo, hi Point3, x, y, w, h float64) projection {
	right, up, view := cam.basis()
	p := projection{
		right:  right,
		up:     up,
		view:   view,
		center: Point3{(lo.X + hi.X) / 2, (lo.Y + hi.Y) / 2, (lo.Z + hi.Z) / 2},
		cx:     x + w/2,
		cy:     y + h/2,
	}

	var spanU, spanV float64
	for _, c := range boxCorners(lo, hi) {
		d := Point3{c.X - p.center.X, c.Y - p.center.Y, c.Z - p.center.Z}
		spanU = math.Max(spanU, math.Abs(dot(d, right)))
		spanV = math.Max(spanV, math.Abs(dot(d, up)))
	}
	p.scale = 1
	if spanU > 0 || spanV > 0 {
		su, sv := math.Inf(1), math.Inf(1)
		if spanU > 0 {
			su = w / 2 / spanU
		}
		if spanV > 0 {
			sv = h / 2 / spanV
		}
		p.scale = math.Min(su, sv)
	}
	return p
}

// project returns pixel coordinates and depth. Larger depth is closer to
// the viewer.
func (p projection) project(pt Point3) (sx, sy, depth float64) {
	d := Point3{pt.X - p.center.X, pt.Y - p.center.Y, pt.Z - p.center.Z}
	sx = p.cx + dot(d, p.right)*p.scale
	sy = p.cy - dot(d, p.up)*p.scale
	return sx, sy, dot(d, p.view)
}

func boxCorners(lo, hi Point3) [8]Point3 {
	return [8]Point3{
		{lo.X, lo.Y, lo.Z}, {hi.X, lo.Y, lo.Z}, {hi.X, hi.Y, lo.Z}, {lo.X, hi.Y, lo.Z},
		{lo.X, lo.Y, hi.Z}, {hi.X, lo.Y, hi.Z}, {hi.X, hi.Y, hi.Z}, {lo.X, hi.Y, hi.Z},
	}
}

// boxEdges indexes pairs of boxCorners.
var boxEdges = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}
