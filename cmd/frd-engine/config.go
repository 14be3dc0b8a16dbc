// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/frd-engine/internal/frd"
	"github.com/pdiddy/frd-engine/internal/metrics"
	"github.com/pdiddy/frd-engine/pkg/types"
)

// maxSkippedShown bounds the skipped lines echoed to stderr.
const maxSkippedShown = 5

// bindFlags binds the running command's flags to config keys. Binding at run
// time lets several commands share one key without overriding each other.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for flag, key := range keys {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			return fmt.Errorf("binding %s: no flag %q", key, flag)
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding %s: %w", key, err)
		}
	}
	return nil
}

func renderConfig() types.RenderConfig {
	return types.RenderConfig{
		OutputDir:  viper.GetString("render.output_dir"),
		Width:      viper.GetInt("render.width"),
		Height:     viper.GetInt("render.height"),
		Colorscale: types.Colorscale(viper.GetString("render.colorscale")),
		Opacity:    viper.GetFloat64("render.opacity"),
		Azimuth:    viper.GetFloat64("render.azimuth"),
		Elevation:  viper.GetFloat64("render.elevation"),
		Isovalues:  viper.GetInt("render.isovalues"),
		MeshCells:  viper.GetInt("render.mesh_cells"),
		Neighbors:  viper.GetInt("render.neighbors"),
	}
}

func resultsConfig() types.ResultsConfig {
	return types.ResultsConfig{
		ResultsDir: viper.GetString("results.results_dir"),
		FRDDir:     viper.GetString("results.frd_dir"),
		Step:       viper.GetInt("results.step"),
	}
}

func crackConfig() types.CrackConfig {
	return types.CrackConfig{
		AgeDays:     viper.GetFloat64("crack.age_days"),
		FC28:        viper.GetFloat64("crack.fc28"),
		StressScale: viper.GetFloat64("crack.stress_scale"),
		Formula:     viper.GetString("crack.formula"),
		FCT28:       viper.GetFloat64("crack.fct28"),
		A:           viper.GetFloat64("crack.a"),
		B:           viper.GetFloat64("crack.b"),
	}
}

func solverConfig() types.SolverConfig {
	return types.SolverConfig{
		Image:  viper.GetString("solver.image"),
		FRDDir: viper.GetString("solver.frd_dir"),
		DatDir: viper.GetString("solver.dat_dir"),
	}
}

func serverConfig() types.ServerConfig {
	return types.ServerConfig{
		Addr:            viper.GetString("server.addr"),
		RateLimit:       viper.GetFloat64("server.rate_limit"),
		Burst:           viper.GetInt("server.burst"),
		ShutdownTimeout: viper.GetDuration("server.shutdown_timeout"),
		Sliders:         viper.GetStringSlice("server.sliders"),
	}
}

func clientConfig() types.ClientConfig {
	return types.ClientConfig{
		URL:        viper.GetString("client.url"),
		MaxRetries: viper.GetInt("client.max_retries"),
	}
}

// loadedFile is one FRD file reduced to the joined table of a single step.
type loadedFile struct {
	result *frd.Result
	block  frd.StressBlock
	rows   []types.NodeResult
}

// stem returns the file name without directory or extension.
func (l loadedFile) stem() string {
	base := filepath.Base(l.result.Source())
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// loadFile parses path, selects the stress block for step, and joins it
// with the coordinates. Skipped records are reported to stderr.
func loadFile(path string, step int) (loadedFile, error) {
	res, err := frd.ParseFile(path)
	if err != nil {
		return loadedFile{}, err
	}
	reportSkipped(res)

	block, err := res.Block(step)
	if err != nil {
		return loadedFile{}, fmt.Errorf("selecting step in %s: %w", path, err)
	}
	rows := metrics.Join(res.Coordinates(), block.Samples)
	if len(rows) == 0 {
		return loadedFile{}, fmt.Errorf("joining %s: %w", path, metrics.ErrNoData)
	}
	return loadedFile{result: res, block: block, rows: rows}, nil
}

func reportSkipped(res *frd.Result) {
	skipped := res.Skipped()
	if len(skipped) == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "Skipped %d malformed line(s) in %s\n", len(skipped), res.Source())
	for i, s := range skipped {
		if i == maxSkippedShown {
			fmt.Fprintf(os.Stderr, "  ... %d more\n", len(skipped)-maxSkippedShown)
			break
		}
		fmt.Fprintf(os.Stderr, "  %s\n", s)
	}
}

// parseFields converts flag values to fields; empty input selects all.
func parseFields(names []string) ([]types.Field, error) {
	if len(names) == 0 {
		return types.AllFields, nil
	}
	fields := make([]types.Field, 0, len(names))
	for _, n := range names {
		f, err := types.ParseField(n)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}
