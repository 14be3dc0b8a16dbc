// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// canvas is a 2D drawing target. Coordinates are in pixels (points for PDF)
// with the origin at the top left.
type canvas interface {
	fillPolygon(xs, ys []float64, c color.RGBA, alpha float64)
	line(x1, y1, x2, y2 float64, c color.RGBA, width float64)
	fillCircle(x, y, r float64, c color.RGBA, alpha float64)
	fillRect(x, y, w, h float64, c color.RGBA)
	text(x, y float64, s string, size float64, c color.RGBA)
	textWidth(s string, size float64) float64
	close() error
}

// Format is an output file format.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatSVG  Format = "svg"
	FormatPDF  Format = "pdf"
)

// FormatFromPath selects the output format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".svg":
		return FormatSVG, nil
	case ".pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported image format %q (want .png, .jpg, .svg, or .pdf)", filepath.Ext(path))
	}
}

func newCanvas(path string, width, height int) (canvas, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output directory %s: %w", dir, err)
		}
	}
	switch format {
	case FormatSVG:
		return newSVGCanvas(path, width, height)
	case FormatPDF:
		return newPDFCanvas(path, width, height), nil
	default:
		return newRasterCanvas(path, format, width, height), nil
	}
}

// rasterCanvas draws with draw2d onto an RGBA image and encodes it as PNG
// or JPEG on close.
type rasterCanvas struct {
	path   string
	format Format
	img    *image.RGBA
	gc     *draw2dimg.GraphicContext
}

func newRasterCanvas(path string, format Format, width, height int) *rasterCanvas {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return &rasterCanvas{path: path, format: format, img: img, gc: draw2dimg.NewGraphicContext(img)}
}

func withAlpha(c color.RGBA, alpha float64) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(clamp01(alpha) * 255)}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (r *rasterCanvas) fillPolygon(xs, ys []float64, c color.RGBA, alpha float64) {
	if len(xs) < 3 {
		return
	}
	r.gc.SetFillColor(withAlpha(c, alpha))
	r.gc.BeginPath()
	r.gc.MoveTo(xs[0], ys[0])
	for i := 1; i < len(xs); i++ {
		r.gc.LineTo(xs[i], ys[i])
	}
	r.gc.Close()
	r.gc.Fill()
}

func (r *rasterCanvas) line(x1, y1, x2, y2 float64, c color.RGBA, width float64) {
	r.gc.SetStrokeColor(c)
	r.gc.SetLineWidth(width)
	r.gc.BeginPath()
	r.gc.MoveTo(x1, y1)
	r.gc.LineTo(x2, y2)
	r.gc.Stroke()
}

func (r *rasterCanvas) fillCircle(x, y, radius float64, c color.RGBA, alpha float64) {
	r.gc.SetFillColor(withAlpha(c, alpha))
	r.gc.BeginPath()
	draw2dkit.Circle(r.gc, x, y, radius)
	r.gc.Fill()
}

func (r *rasterCanvas) fillRect(x, y, w, h float64, c color.RGBA) {
	r.gc.SetFillColor(c)
	r.gc.BeginPath()
	draw2dkit.Rectangle(r.gc, x, y, x+w, y+h)
	r.gc.Fill()
}

// text draws with the fixed 7x13 face; size is ignored.
func (r *rasterCanvas) text(x, y float64, s string, _ float64, c color.RGBA) {
	d := &font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(int(x), int(y)),
	}
	d.DrawString(s)
}

func (r *rasterCanvas) textWidth(s string, _ float64) float64 {
	return float64(font.MeasureString(basicfont.Face7x13, s).Ceil())
}

func (r *rasterCanvas) close() error {
	if r.format == FormatPNG {
		if err := draw2dimg.SaveToPngFile(r.path, r.img); err != nil {
			return fmt.Errorf("writing %s: %w", r.path, err)
		}
		return nil
	}

	f, err := os.Create(r.path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", r.path, err)
	}
	if err := jpeg.Encode(f, r.img, &jpeg.Options{Quality: 92}); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", r.path, err)
	}
	return f.Close()
}
