// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/frd-engine/internal/metrics"
	"github.com/pdiddy/frd-engine/internal/report"
)

var statsCmd = &cobra.Command{
	Use:   "stats <file.frd>",
	Short: "Print stress statistics for an FRD file",
	Long: `Stats parses an FRD file, joins node coordinates with the selected
stress block, derives Von Mises stress, and prints count, min, max, mean,
population standard deviation, and median per field.

Use --xlsx to also write a workbook with the statistics and the joined
node table.`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, map[string]string{"step": "parse.step"}); err != nil {
		return err
	}
	names, _ := cmd.Flags().GetStringSlice("field")
	format, _ := cmd.Flags().GetString("format")
	xlsxPath, _ := cmd.Flags().GetString("xlsx")

	fields, err := parseFields(names)
	if err != nil {
		return err
	}

	lf, err := loadFile(args[0], viper.GetInt("parse.step"))
	if err != nil {
		return err
	}

	rep, err := metrics.Report(lf.rows, fields...)
	if err != nil {
		return fmt.Errorf("summarizing %s: %w", args[0], err)
	}
	doc := report.NewDocument(lf.result.Source(), lf.block.Step, lf.block.Time, len(lf.rows), rep)

	switch format {
	case "table", "":
		fmt.Fprintf(os.Stdout, "%s: step %d (time %g), %d nodes\n\n",
			doc.Source, doc.Step, doc.StepTime, doc.NodeCount)
		report.Table(os.Stdout, rep)
	case "yaml":
		if err := report.WriteYAML(os.Stdout, doc); err != nil {
			return err
		}
	case "json":
		if err := report.WriteJSON(os.Stdout, doc); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q: use table, yaml, or json", format)
	}

	if xlsxPath != "" {
		if err := report.WriteXLSX(xlsxPath, doc, lf.rows); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", xlsxPath)
	}
	return nil
}

func init() {
	statsCmd.Flags().Int("step", 0, "solver step to analyse (0 = last)")
	statsCmd.Flags().StringSlice("field", nil, "fields to summarize (default: all)")
	statsCmd.Flags().String("format", "table", "output format: table, yaml, or json")
	statsCmd.Flags().String("xlsx", "", "also write statistics and nodes to this .xlsx file")

	rootCmd.AddCommand(statsCmd)
}
