// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"image/color"
	"math"
	"sort"
)

var (
	colorText  = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorFrame = color.RGBA{0xbb, 0xbb, 0xbb, 0xff}
	colorPanel = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

// Panel layout, in pixels.
const (
	titleHeight   = 28.0
	panelMargin   = 16.0
	colorbarWidth = 16.0
	colorbarSteps = 64
	labelSpace    = 72.0
	titleSize     = 16.0
	labelSize     = 11.0
)

// primitive is one depth-sorted element of a scene.
type primitive struct {
	depth float64
	draw  func(c canvas)
}

// drawScene paints s into the rectangle at (x, y) of size w by h.
func drawScene(c canvas, s *Scene, x, y, w, h float64) error {
	cmap, err := NewColormap(s.Colorscale)
	if err != nil {
		return err
	}

	c.fillRect(x, y, w, h, colorPanel)
	tw := c.textWidth(s.Title, titleSize)
	c.text(x+(w-tw)/2, y+titleHeight-8, s.Title, titleSize, colorText)

	plotX := x + panelMargin
	plotY := y + titleHeight + panelMargin
	plotW := w - 2*panelMargin - colorbarWidth - labelSpace
	plotH := h - titleHeight - 2*panelMargin
	if plotW <= 0 || plotH <= 0 {
		return fmt.Errorf("image %gx%g too small to draw %q", w, h, s.Title)
	}

	proj := newProjection(s.Camera, s.BoundsMin, s.BoundsMax, plotX, plotY, plotW, plotH)

	corners := boxCorners(s.BoundsMin, s.BoundsMax)
	for _, e := range boxEdges {
		x1, y1, _ := proj.project(corners[e[0]])
		x2, y2, _ := proj.project(corners[e[1]])
		c.line(x1, y1, x2, y2, colorFrame, 1)
	}

	var prims []primitive
	switch s.Kind {
	case KindHeatmap:
		prims = markerPrimitives(s, cmap, proj)
	case KindIsosurface:
		prims = trianglePrimitives(s, cmap, proj)
	}
	sort.SliceStable(prims, func(i, j int) bool { return prims[i].depth < prims[j].depth })
	for _, p := range prims {
		p.draw(c)
	}

	drawColorbar(c, s, cmap, plotX+plotW+panelMargin, plotY, plotH)
	return nil
}

func markerPrimitives(s *Scene, cmap *Colormap, proj projection) []primitive {
	prims := make([]primitive, 0, len(s.Markers))
	for _, m := range s.Markers {
		sx, sy, depth := proj.project(m.Point3)
		col := cmap.Value(m.Value, s.Min, s.Max)
		r := s.MarkerSize / 2
		prims = append(prims, primitive{depth: depth, draw: func(c canvas) {
			c.fillCircle(sx, sy, r, col, 0.9)
		}})
	}
	return prims
}

func trianglePrimitives(s *Scene, cmap *Colormap, proj projection) []primitive {
	prims := make([]primitive, 0, s.TriangleCount())
	for _, surf := range s.Surfaces {
		base := cmap.Value(surf.Level, s.Min, s.Max)
		for _, t := range surf.Triangles {
			xs := make([]float64, 3)
			ys := make([]float64, 3)
			var depth float64
			for j, v := range t.V {
				var d float64
				xs[j], ys[j], d = proj.project(v)
				depth += d / 3
			}
			light := math.Abs(dot(t.Normal, proj.view))
			if math.IsNaN(light) {
				light = 0
			}
			col := shade(base, 0.35+0.65*light)
			alpha := s.Opacity
			prims = append(prims, primitive{depth: depth, draw: func(c canvas) {
				c.fillPolygon(xs, ys, col, alpha)
			}})
		}
	}
	return prims
}

// drawColorbar draws a vertical gradient from Max (top) to Min (bottom)
// with labeled ends and, for isosurfaces, a tick per level.
func drawColorbar(c canvas, s *Scene, cmap *Colormap, x, y, h float64) {
	step := h / colorbarSteps
	for i := 0; i < colorbarSteps; i++ {
		t := 1 - (float64(i)+0.5)/colorbarSteps
		c.fillRect(x, y+float64(i)*step, colorbarWidth, step+0.5, cmap.At(t))
	}

	labelX := x + colorbarWidth + 4
	c.text(labelX, y+labelSize, formatTick(s.Max), labelSize, colorText)
	c.text(labelX, y+h, formatTick(s.Min), labelSize, colorText)

	if s.Kind != KindIsosurface || s.Max <= s.Min {
		return
	}
	for _, surf := range s.Surfaces {
		ty := y + h*(1-(surf.Level-s.Min)/(s.Max-s.Min))
		c.line(x-3, ty, x+colorbarWidth+3, ty, colorText, 1)
	}
}

func formatTick(v float64) string {
	return fmt.Sprintf("%.4g", v)
}
