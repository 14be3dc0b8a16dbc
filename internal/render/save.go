// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// ErrEmptyMesh is returned when exporting a scene with no triangles.
var ErrEmptyMesh = errors.New("scene has no isosurface triangles")

// Save writes scene to path in the format given by its extension. The
// parent directory is created when absent.
func Save(scene *Scene, path string, width, height int) error {
	return SaveGrid([]*Scene{scene}, 1, path, width, height)
}

// SaveGrid lays scenes out in a grid with cols columns and writes the
// combined image to path. width and height size the whole image.
func SaveGrid(scenes []*Scene, cols int, path string, width, height int) error {
	if len(scenes) == 0 {
		return errors.New("no scenes to draw")
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	if cols <= 0 || cols > len(scenes) {
		cols = len(scenes)
	}
	rows := int(math.Ceil(float64(len(scenes)) / float64(cols)))

	c, err := newCanvas(path, width, height)
	if err != nil {
		return err
	}

	pw := float64(width) / float64(cols)
	ph := float64(height) / float64(rows)
	for i, s := range scenes {
		x := float64(i%cols) * pw
		y := float64(i/cols) * ph
		if err := drawScene(c, s, x, y, pw, ph); err != nil {
			c.close()
			return fmt.Errorf("drawing %s: %w", s.Title, err)
		}
	}
	return c.close()
}

// WriteSTL exports the isosurface triangles of scene as an ASCII STL file.
func WriteSTL(scene *Scene, path string) error {
	if scene.TriangleCount() == 0 {
		return ErrEmptyMesh
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	w := bufio.NewWriter(f)

	name := string(scene.Field)
	fmt.Fprintf(w, "solid %s\n", name)
	for _, surf := range scene.Surfaces {
		for _, t := range surf.Triangles {
			n := t.Normal
			if math.IsNaN(n.X) || math.IsNaN(n.Y) || math.IsNaN(n.Z) {
				n = Point3{}
			}
			fmt.Fprintf(w, "  facet normal %e %e %e\n    outer loop\n", n.X, n.Y, n.Z)
			for _, v := range t.V {
				fmt.Fprintf(w, "      vertex %e %e %e\n", v.X, v.Y, v.Z)
			}
			fmt.Fprintf(w, "    endloop\n  endfacet\n")
		}
	}
	fmt.Fprintf(w, "endsolid %s\n", name)

	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
