// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/frd-engine/internal/render"
	"github.com/pdiddy/frd-engine/pkg/types"
)

// kindAll renders the overview grid.
const kindAll = "all"

// overviewFields are drawn as extra heatmaps in the overview grid.
var overviewFields = []types.Field{types.FieldSXX, types.FieldSYY, types.FieldSZZ}

var renderCmd = &cobra.Command{
	Use:   "render <file.frd>",
	Short: "Render a stress field as a heatmap or isosurface image",
	Long: `Render draws one field of an FRD file as a 3D scatter heatmap of the
nodes or as nested isosurfaces. The output format follows the extension of
--out: .png, .jpg, .svg, or .pdf.

--kind all writes an overview grid with the heatmap and isosurfaces of the
field plus heatmaps of the normal stress components.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func runRender(cmd *cobra.Command, args []string) error {
	if err := bindRenderFlags(cmd); err != nil {
		return err
	}
	fieldName, _ := cmd.Flags().GetString("field")
	kind, _ := cmd.Flags().GetString("kind")
	out, _ := cmd.Flags().GetString("out")

	field, err := types.ParseField(fieldName)
	if err != nil {
		return err
	}

	lf, err := loadFile(args[0], viper.GetInt("parse.step"))
	if err != nil {
		return err
	}

	cfg := renderConfig()
	opts := render.OptionsFromConfig(cfg)
	if out == "" {
		out = filepath.Join(cfg.OutputDir, fmt.Sprintf("%s_%s_%s.png", lf.stem(), field, kind))
	}

	var scenes []*render.Scene
	cols := 1
	switch kind {
	case string(render.KindHeatmap):
		s, err := render.BuildHeatmap(lf.rows, field, opts)
		if err != nil {
			return err
		}
		scenes = append(scenes, s)
	case string(render.KindIsosurface):
		s, err := render.BuildIsosurface(lf.rows, field, opts)
		if err != nil {
			return err
		}
		scenes = append(scenes, s)
	case kindAll:
		scenes, err = overview(lf.rows, field, opts)
		if err != nil {
			return err
		}
		cols = 3
	default:
		return fmt.Errorf("unsupported kind %q: use heatmap, isosurface, or all", kind)
	}

	if err := render.SaveGrid(scenes, cols, out, cfg.Width, cfg.Height); err != nil {
		return fmt.Errorf("saving %s: %w", out, err)
	}
	for _, s := range scenes {
		fmt.Fprintf(os.Stdout, "  %-28s range [%.4g, %.4g]", s.Title, s.Min, s.Max)
		if n := s.TriangleCount(); n > 0 {
			fmt.Fprintf(os.Stdout, ", %d triangles", n)
		}
		fmt.Fprintln(os.Stdout)
	}
	fmt.Fprintf(os.Stdout, "Wrote %s\n", out)
	return nil
}

func overview(rows []types.NodeResult, field types.Field, opts render.Options) ([]*render.Scene, error) {
	heat, err := render.BuildHeatmap(rows, field, opts)
	if err != nil {
		return nil, err
	}
	iso, err := render.BuildIsosurface(rows, field, opts)
	if err != nil {
		return nil, err
	}
	scenes := []*render.Scene{heat, iso}
	for _, f := range overviewFields {
		if f == field {
			continue
		}
		s, err := render.BuildHeatmap(rows, f, opts)
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, s)
	}
	return scenes, nil
}

// --- mesh subcommand ---

var meshCmd = &cobra.Command{
	Use:   "mesh <file.frd>",
	Short: "Export isosurfaces of a stress field as an STL mesh",
	Long: `Mesh extracts isosurfaces of one field with marching cubes over the
interpolated node values and writes them as an ASCII STL file. Without
--isovalue, evenly spaced levels between the field's min and max are used.`,
	Args: cobra.ExactArgs(1),
	RunE: runMesh,
}

func runMesh(cmd *cobra.Command, args []string) error {
	if err := bindRenderFlags(cmd); err != nil {
		return err
	}
	fieldName, _ := cmd.Flags().GetString("field")
	levels, _ := cmd.Flags().GetFloat64Slice("isovalue")
	out, _ := cmd.Flags().GetString("out")

	field, err := types.ParseField(fieldName)
	if err != nil {
		return err
	}

	lf, err := loadFile(args[0], viper.GetInt("parse.step"))
	if err != nil {
		return err
	}

	cfg := renderConfig()
	opts := render.OptionsFromConfig(cfg)
	opts.Levels = levels

	scene, err := render.BuildIsosurface(lf.rows, field, opts)
	if err != nil {
		return err
	}
	if out == "" {
		out = filepath.Join(cfg.OutputDir, fmt.Sprintf("%s_%s.stl", lf.stem(), field))
	}
	if !strings.EqualFold(filepath.Ext(out), ".stl") {
		return fmt.Errorf("mesh output must be .stl, got %s", out)
	}
	if err := render.WriteSTL(scene, out); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	for _, s := range scene.Surfaces {
		fmt.Fprintf(os.Stdout, "  level %-12.4g %d triangles\n", s.Level, len(s.Triangles))
	}
	fmt.Fprintf(os.Stdout, "Wrote %s (%d triangles)\n", out, scene.TriangleCount())
	return nil
}

// --- shared flags ---

var renderFlagKeys = map[string]string{
	"step":       "parse.step",
	"output-dir": "render.output_dir",
	"width":      "render.width",
	"height":     "render.height",
	"colorscale": "render.colorscale",
	"opacity":    "render.opacity",
	"azimuth":    "render.azimuth",
	"elevation":  "render.elevation",
	"isovalues":  "render.isovalues",
	"mesh-cells": "render.mesh_cells",
	"neighbors":  "render.neighbors",
}

func bindRenderFlags(cmd *cobra.Command) error {
	return bindFlags(cmd, renderFlagKeys)
}

func addRenderFlags(cmd *cobra.Command) {
	cmd.Flags().Int("step", 0, "solver step to render (0 = last)")
	cmd.Flags().String("field", string(types.FieldVonMises), "field to draw: sxx, syy, szz, sxy, syz, szx, or von_mises")
	cmd.Flags().String("output-dir", "output", "directory for generated files when --out is not set")
	cmd.Flags().Int("width", render.DefaultWidth, "image width in pixels")
	cmd.Flags().Int("height", render.DefaultHeight, "image height in pixels")
	cmd.Flags().String("colorscale", string(types.ColorscaleViridis), "color map: Viridis, RdBu, Jet, Hot, or Greys")
	cmd.Flags().Float64("opacity", 0.4, "isosurface opacity between 0 and 1")
	cmd.Flags().Float64("azimuth", -60, "camera azimuth in degrees")
	cmd.Flags().Float64("elevation", 25, "camera elevation in degrees")
	cmd.Flags().Int("isovalues", 3, "number of automatic isosurface levels")
	cmd.Flags().Int("mesh-cells", 48, "marching cubes cells along the longest axis")
	cmd.Flags().Int("neighbors", 8, "nodes used to interpolate the field")
	cmd.Flags().String("out", "", "output path (default: <output-dir>/<file>_<field>_<kind>)")
}

func init() {
	addRenderFlags(renderCmd)
	renderCmd.Flags().String("kind", string(render.KindHeatmap), "plot kind: heatmap, isosurface, or all")

	addRenderFlags(meshCmd)
	meshCmd.Flags().Float64Slice("isovalue", nil, "explicit isosurface levels (repeatable)")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(meshCmd)
}
