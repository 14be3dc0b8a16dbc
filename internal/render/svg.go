// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bufio"
	"fmt"
	"image/color"
	"math"
	"os"

	svg "github.com/ajstarks/svgo"
)

// svgCanvas streams SVG elements to a file. svgo takes integer coordinates.
type svgCanvas struct {
	f   *os.File
	buf *bufio.Writer
	svg *svg.SVG
}

func newSVGCanvas(path string, width, height int) (*svgCanvas, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	buf := bufio.NewWriter(f)
	c := &svgCanvas{f: f, buf: buf, svg: svg.New(buf)}
	c.svg.Start(width, height)
	return c, nil
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func px(v float64) int { return int(math.Round(v)) }

func (c *svgCanvas) fillPolygon(xs, ys []float64, col color.RGBA, alpha float64) {
	if len(xs) < 3 {
		return
	}
	ix := make([]int, len(xs))
	iy := make([]int, len(ys))
	for i := range xs {
		ix[i], iy[i] = px(xs[i]), px(ys[i])
	}
	c.svg.Polygon(ix, iy, fmt.Sprintf("fill:%s;fill-opacity:%.3f;stroke:none", hexColor(col), clamp01(alpha)))
}

func (c *svgCanvas) line(x1, y1, x2, y2 float64, col color.RGBA, width float64) {
	c.svg.Line(px(x1), px(y1), px(x2), px(y2), fmt.Sprintf("stroke:%s;stroke-width:%.1f", hexColor(col), width))
}

func (c *svgCanvas) fillCircle(x, y, r float64, col color.RGBA, alpha float64) {
	radius := px(r)
	if radius < 1 {
		radius = 1
	}
	c.svg.Circle(px(x), px(y), radius, fmt.Sprintf("fill:%s;fill-opacity:%.3f", hexColor(col), clamp01(alpha)))
}

func (c *svgCanvas) fillRect(x, y, w, h float64, col color.RGBA) {
	c.svg.Rect(px(x), px(y), int(math.Ceil(w)), int(math.Ceil(h)), "fill:"+hexColor(col))
}

func (c *svgCanvas) text(x, y float64, s string, size float64, col color.RGBA) {
	c.svg.Text(px(x), px(y), s, fmt.Sprintf("font-family:sans-serif;font-size:%.0fpx;fill:%s", size, hexColor(col)))
}

func (c *svgCanvas) textWidth(s string, size float64) float64 {
	return 0.55 * size * float64(len(s))
}

func (c *svgCanvas) close() error {
	c.svg.End()
	if err := c.buf.Flush(); err != nil {
		c.f.Close()
		return fmt.Errorf("writing %s: %w", c.f.Name(), err)
	}
	return c.f.Close()
}
