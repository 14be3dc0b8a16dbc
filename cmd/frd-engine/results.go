// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/frd-engine/internal/store"
	"github.com/pdiddy/frd-engine/pkg/types"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Manage the results store (ingest, list, series, export)",
	Long: `Results manages a local SQLite store of parsed FRD files grouped into
series (one directory per member). Use subcommands to ingest files, list
stored results, print a field's statistics over time, or export.`,
}

// --- ingest subcommand ---

var resultsIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Parse FRD files into the results store",
	Long: `Ingest scans frd/<series>/*.frd, parses each file, and stores the
joined node table and per-field statistics. Files whose modification time
is unchanged since the last run are skipped.`,
	RunE: runResultsIngest,
}

func runResultsIngest(cmd *cobra.Command, args []string) error {
	s, cfg, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	summary, err := s.Ingest(context.Background(), cfg.FRDDir, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d file(s) failed ingest", summary.Failed)
	}
	return nil
}

// --- list subcommand ---

var resultsListCmd = &cobra.Command{
	Use:   "list [series]",
	Short: "List stored results",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runResultsList,
}

func runResultsList(cmd *cobra.Command, args []string) error {
	s, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	var series string
	if len(args) > 0 {
		series = args[0]
	}
	recs, err := s.Results(context.Background(), series)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return printJSON(recs)
	}
	if len(recs) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-30s  %-16s  %6s  %10s  %8s  %s\n",
		"ID", "Timestamp", "Step", "Time", "Nodes", "Skipped")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))
	for _, r := range recs {
		ts := "-"
		if !r.Timestamp.IsZero() {
			ts = r.Timestamp.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(os.Stdout, "%-30s  %-16s  %6d  %10g  %8d  %d\n",
			r.ID, ts, r.Step, r.StepTime, r.NodeCount, r.SkippedLines)
	}
	fmt.Fprintf(os.Stdout, "\n%d results\n", len(recs))
	return nil
}

// --- series subcommand ---

var resultsSeriesCmd = &cobra.Command{
	Use:   "series <series>",
	Short: "Print a field's statistics across a series",
	Long: `Series prints one row per stored result of the series, in time order,
with the statistics of the selected field. Without an argument, the series
names are listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResultsSeries,
}

func runResultsSeries(cmd *cobra.Command, args []string) error {
	s, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	ctx := context.Background()

	if len(args) == 0 {
		names, err := s.SeriesNames(ctx)
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	}

	fieldName, _ := cmd.Flags().GetString("field")
	field, err := types.ParseField(fieldName)
	if err != nil {
		return err
	}
	points, err := s.Series(ctx, args[0], field)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return printJSON(points)
	}
	if len(points) == 0 {
		fmt.Printf("No results in series %s.\n", args[0])
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-30s  %12s  %12s  %12s  %12s\n", "Result", "Min", "Max", "Mean", "Median")
	for _, p := range points {
		fmt.Fprintf(os.Stdout, "%-30s  %12.5g  %12.5g  %12.5g  %12.5g\n",
			p.ResultID, p.Summary.Min, p.Summary.Max, p.Summary.Mean, p.Summary.Median)
	}
	return nil
}

// --- export subcommand ---

var resultsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the results store to YAML or JSON",
	Long: `Export writes every stored result with its statistics to
results/index/export.yaml or export.json.`,
	RunE: runResultsExport,
}

func runResultsExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	s, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	switch format {
	case "yaml", "":
		if err := s.ExportYAML(context.Background()); err != nil {
			return err
		}
		fmt.Println("Exported to", s.ExportPath("yaml"))
	case "json":
		if err := s.ExportJSON(context.Background()); err != nil {
			return err
		}
		fmt.Println("Exported to", s.ExportPath("json"))
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	return nil
}

// --- shared helpers ---

func openStore(cmd *cobra.Command) (*store.Store, types.ResultsConfig, error) {
	if err := bindFlags(cmd, map[string]string{
		"results-dir": "results.results_dir",
		"frd-dir":     "results.frd_dir",
		"step":        "results.step",
	}); err != nil {
		return nil, types.ResultsConfig{}, err
	}
	cfg := resultsConfig()
	s, err := store.NewStore(cfg)
	if err != nil {
		return nil, cfg, err
	}
	return s, cfg, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	resultsCmd.PersistentFlags().String("results-dir", "results", "base directory for the results store (contains index/)")
	resultsCmd.PersistentFlags().String("frd-dir", "frd", "directory of FRD files (contains <series>/*.frd)")
	resultsCmd.PersistentFlags().Int("step", 0, "solver step stored per file (0 = last)")

	resultsListCmd.Flags().Bool("json", false, "output results as JSON")

	resultsSeriesCmd.Flags().String("field", string(types.FieldVonMises), "field to summarize")
	resultsSeriesCmd.Flags().Bool("json", false, "output the series as JSON")

	resultsExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	resultsCmd.AddCommand(resultsIngestCmd)
	resultsCmd.AddCommand(resultsListCmd)
	resultsCmd.AddCommand(resultsSeriesCmd)
	resultsCmd.AddCommand(resultsExportCmd)

	rootCmd.AddCommand(resultsCmd)
}
