// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/pdiddy/frd-engine/pkg/types"
)

// colorscaleStops lists evenly spaced anchor colors for each scale.
var colorscaleStops = map[types.Colorscale][]string{
	types.ColorscaleViridis: {"#440154", "#482878", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"},
	types.ColorscaleRdBu:    {"#053061", "#2166ac", "#4393c3", "#92c5de", "#d1e5f0", "#fddbc7", "#f4a582", "#d6604d", "#b2182b", "#67001f"},
	types.ColorscaleJet:     {"#000083", "#003caa", "#05ffff", "#ffff00", "#fa0000", "#800000"},
	types.ColorscaleHot:     {"#000000", "#e60000", "#ffd200", "#ffffff"},
	types.ColorscaleGreys:   {"#000000", "#ffffff"},
}

// Colormap maps normalized values onto a colorscale.
type Colormap struct {
	stops []colorful.Color
}

// NewColormap returns the colormap for scale.
func NewColormap(scale types.Colorscale) (*Colormap, error) {
	hexes, ok := colorscaleStops[scale]
	if !ok {
		return nil, fmt.Errorf("unknown colorscale %q", scale)
	}
	m := &Colormap{stops: make([]colorful.Color, len(hexes))}
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("colorscale %s stop %d: %w", scale, i, err)
		}
		m.stops[i] = c
	}
	return m, nil
}

// At returns the color at t in [0, 1]. Values outside the range are clamped.
func (m *Colormap) At(t float64) color.RGBA {
	if math.IsNaN(t) {
		t = 0
	}
	t = math.Max(0, math.Min(1, t))

	pos := t * float64(len(m.stops)-1)
	i := int(math.Floor(pos))
	if i >= len(m.stops)-1 {
		i = len(m.stops) - 2
	}
	c := m.stops[i].BlendLab(m.stops[i+1], pos-float64(i)).Clamped()
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// Value returns the color of v within [lo, hi]. A flat range maps to the
// middle of the scale.
func (m *Colormap) Value(v, lo, hi float64) color.RGBA {
	if hi <= lo {
		return m.At(0.5)
	}
	return m.At((v - lo) / (hi - lo))
}

// shade scales the color brightness by k in [0, 1].
func shade(c color.RGBA, k float64) color.RGBA {
	k = math.Max(0, math.Min(1, k))
	return color.RGBA{
		R: uint8(float64(c.R) * k),
		G: uint8(float64(c.G) * k),
		B: uint8(float64(c.B) * k),
		A: c.A,
	}
}
