// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"image/color"

	"github.com/phpdave11/gofpdf"
)

// pdfCanvas draws onto a single page sized to the image, one point per
// pixel.
type pdfCanvas struct {
	path string
	pdf  *gofpdf.Fpdf
}

func newPDFCanvas(path string, width, height int) *pdfCanvas {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: float64(width), Ht: float64(height)},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	return &pdfCanvas{path: path, pdf: pdf}
}

func (c *pdfCanvas) fillPolygon(xs, ys []float64, col color.RGBA, alpha float64) {
	if len(xs) < 3 {
		return
	}
	pts := make([]gofpdf.PointType, len(xs))
	for i := range xs {
		pts[i] = gofpdf.PointType{X: xs[i], Y: ys[i]}
	}
	c.pdf.SetAlpha(clamp01(alpha), "Normal")
	c.pdf.SetFillColor(int(col.R), int(col.G), int(col.B))
	c.pdf.Polygon(pts, "F")
	c.pdf.SetAlpha(1, "Normal")
}

func (c *pdfCanvas) line(x1, y1, x2, y2 float64, col color.RGBA, width float64) {
	c.pdf.SetDrawColor(int(col.R), int(col.G), int(col.B))
	c.pdf.SetLineWidth(width)
	c.pdf.Line(x1, y1, x2, y2)
}

func (c *pdfCanvas) fillCircle(x, y, r float64, col color.RGBA, alpha float64) {
	c.pdf.SetAlpha(clamp01(alpha), "Normal")
	c.pdf.SetFillColor(int(col.R), int(col.G), int(col.B))
	c.pdf.Circle(x, y, r, "F")
	c.pdf.SetAlpha(1, "Normal")
}

func (c *pdfCanvas) fillRect(x, y, w, h float64, col color.RGBA) {
	c.pdf.SetFillColor(int(col.R), int(col.G), int(col.B))
	c.pdf.Rect(x, y, w, h, "F")
}

func (c *pdfCanvas) text(x, y float64, s string, size float64, col color.RGBA) {
	c.pdf.SetFont("Helvetica", "", size)
	c.pdf.SetTextColor(int(col.R), int(col.G), int(col.B))
	c.pdf.Text(x, y, s)
}

func (c *pdfCanvas) textWidth(s string, size float64) float64 {
	c.pdf.SetFont("Helvetica", "", size)
	return c.pdf.GetStringWidth(s)
}

func (c *pdfCanvas) close() error {
	if err := c.pdf.OutputFileAndClose(c.path); err != nil {
		return fmt.Errorf("writing %s: %w", c.path, err)
	}
	return nil
}
