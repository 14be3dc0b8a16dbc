//go:build mage

// Package main contains Mage build targets for frd-engine developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories the pipeline expects.
var projectDirs = []string{
	"inp",
	"frd",
	"dat",
	"output",
	"results/index",
}

// Init creates the project directory structure for the pipeline.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "frd-engine"
	cmdPkg  = "./cmd/frd-engine"
)

// binPath is the compiled CLI.
var binPath = filepath.Join(binDir, binName)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	ldflags := "-X main.version=" + version
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", binPath, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", binPath)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Stats prints project metrics: Go production and test lines of code.
func Stats() error {
	prodLines, err := countGoLines(".", false)
	if err != nil {
		return err
	}
	testLines, err := countGoLines(".", true)
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	return nil
}

// countGoLines walks the directory tree and counts non-blank lines in Go files.
// If testOnly is true, count only _test.go files; otherwise count non-test .go files.
func countGoLines(root string, testOnly bool) (int, error) {
	total := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), "_") || info.Name() == "vendor" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		if strings.HasSuffix(path, "_test.go") != testOnly {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) != "" {
				total++
			}
		}
		return nil
	})
	return total, err
}

// Pipeline groups targets that drive the built CLI over the project directories.
type Pipeline mg.Namespace

// Solve runs CalculiX on every deck under inp/.
func (Pipeline) Solve() error {
	mg.Deps(Build, Init)
	return sh.RunV(binPath, "solve", "--inp-dir", "inp", "--frd-dir", "frd", "--dat-dir", "dat")
}

// Ingest parses frd/ into the results store.
func (Pipeline) Ingest() error {
	mg.Deps(Build, Init)
	return sh.RunV(binPath, "results", "ingest", "--frd-dir", "frd", "--results-dir", "results")
}

// Render draws the overview grid for every file under frd/.
func (Pipeline) Render() error {
	mg.Deps(Build, Init)
	files, err := filepath.Glob(filepath.Join("frd", "*", "*.frd"))
	if err != nil {
		return err
	}
	for _, f := range files {
		series := filepath.Base(filepath.Dir(f))
		stem := strings.TrimSuffix(filepath.Base(f), ".frd")
		out := filepath.Join("output", series, stem+"_overview.png")
		if err := sh.RunV(binPath, "render", f, "--kind", "all", "--out", out); err != nil {
			return fmt.Errorf("rendering %s: %w", f, err)
		}
	}
	return nil
}

// VTK converts every file under frd/ to legacy VTK meshes in output/vtk.
func (Pipeline) VTK() error {
	mg.Deps(Build, Init)
	return sh.RunV(binPath, "vtk", "--frd-dir", "frd", "--out-dir", filepath.Join("output", "vtk"))
}

// Serve starts the results API over the store.
func (Pipeline) Serve() error {
	mg.Deps(Pipeline.Ingest)
	return sh.RunV(binPath, "serve", "--results-dir", "results")
}

// All solves, ingests, and renders in order.
func (Pipeline) All() {
	mg.SerialDeps(Pipeline.Solve, Pipeline.Ingest, Pipeline.Render)
}
