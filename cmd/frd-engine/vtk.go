// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/frd-engine/internal/render"
)

var vtkCmd = &cobra.Command{
	Use:   "vtk [files...]",
	Short: "Convert FRD results to VTK or VTU for ParaView",
	Long: `VTK writes each FRD file as a point cloud carrying the six stress
components and Von Mises stress per node. Without arguments every .frd
under --frd-dir is converted and the directory layout is mirrored under
--out-dir. Existing outputs are skipped unless --force is set.`,
	RunE: runVTK,
}

// vtkSummary counts the outcome of a conversion run.
type vtkSummary struct {
	Converted int
	Skipped   int
	Failed    int
}

func runVTK(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, map[string]string{"step": "parse.step"}); err != nil {
		return err
	}
	frdDir, _ := cmd.Flags().GetString("frd-dir")
	outDir, _ := cmd.Flags().GetString("out-dir")
	format, _ := cmd.Flags().GetString("format")
	force, _ := cmd.Flags().GetBool("force")

	format = strings.ToLower(format)
	if format != "vtk" && format != "vtu" {
		return fmt.Errorf("unsupported format %q: use vtk or vtu", format)
	}

	root := frdDir
	files := args
	if len(files) == 0 {
		found, err := findFRDTree(frdDir)
		if err != nil {
			return err
		}
		files = found
	} else {
		root = ""
	}

	sum := convertVTK(files, root, outDir, format, viper.GetInt("parse.step"), force, os.Stdout)
	if sum.Failed > 0 {
		return fmt.Errorf("%d file(s) failed conversion", sum.Failed)
	}
	return nil
}

// findFRDTree lists every .frd file below root.
func findFRDTree(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".frd") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	return files, nil
}

// vtkTarget maps an FRD path to its output path. Files under root keep
// their relative location; others are placed under their parent's name.
func vtkTarget(path, root, outDir, format string) string {
	rel := filepath.Join(filepath.Base(filepath.Dir(path)), filepath.Base(path))
	if root != "" {
		if r, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
		}
	}
	return filepath.Join(outDir, strings.TrimSuffix(rel, filepath.Ext(rel))+"."+format)
}

func convertVTK(files []string, root, outDir, format string, step int, force bool, w io.Writer) vtkSummary {
	var sum vtkSummary
	for _, path := range files {
		target := vtkTarget(path, root, outDir, format)
		if _, err := os.Stat(target); err == nil && !force {
			fmt.Fprintf(w, "skipped: %s (exists)\n", target)
			sum.Skipped++
			continue
		}

		lf, err := loadFile(path, step)
		if err == nil {
			title := strings.TrimSuffix(target, filepath.Ext(target))
			err = render.WriteVTK(lf.rows, target, filepath.ToSlash(title))
		}
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", path, err)
			sum.Failed++
			continue
		}
		fmt.Fprintf(w, "converted: %s -> %s (%d nodes)\n", path, target, len(lf.rows))
		sum.Converted++
	}
	fmt.Fprintf(w, "\nConverted: %d, skipped: %d, failed: %d\n", sum.Converted, sum.Skipped, sum.Failed)
	return sum
}

func init() {
	vtkCmd.Flags().Int("step", 0, "solver step to export (0 = last)")
	vtkCmd.Flags().String("frd-dir", "frd", "directory scanned when no files are given")
	vtkCmd.Flags().String("out-dir", filepath.Join("output", "vtk"), "directory receiving converted files")
	vtkCmd.Flags().String("format", "vtk", "output format: vtk (legacy ASCII) or vtu (XML)")
	vtkCmd.Flags().Bool("force", false, "overwrite existing outputs")

	rootCmd.AddCommand(vtkCmd)
}
