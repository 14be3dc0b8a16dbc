// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/frd-engine/internal/crack"
	"github.com/pdiddy/frd-engine/pkg/types"
)

var tciCmd = &cobra.Command{
	Use:   "tci <file.frd>",
	Short: "Evaluate the thermal crack index of concrete nodes",
	Long: `TCI compares the stress at each node with the tensile strength of
concrete at the given age and classifies the crack risk as safe, caution,
warning, or danger. Stress values are multiplied by --scale to obtain MPa.`,
	Args: cobra.ExactArgs(1),
	RunE: runTCI,
}

func runTCI(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, map[string]string{
		"step":    "parse.step",
		"age":     "crack.age_days",
		"fc28":    "crack.fc28",
		"scale":   "crack.stress_scale",
		"formula": "crack.formula",
		"fct28":   "crack.fct28",
		"a":       "crack.a",
		"b":       "crack.b",
	}); err != nil {
		return err
	}
	fieldName, _ := cmd.Flags().GetString("field")
	top, _ := cmd.Flags().GetInt("top")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	field, err := types.ParseField(fieldName)
	if err != nil {
		return err
	}

	lf, err := loadFile(args[0], viper.GetInt("parse.step"))
	if err != nil {
		return err
	}

	sum, err := crack.Assess(lf.rows, field, crackConfig())
	if err != nil {
		return fmt.Errorf("assessing %s: %w", args[0], err)
	}

	sort.SliceStable(sum.Assessments, func(i, j int) bool {
		return sum.Assessments[i].Index > sum.Assessments[j].Index
	})
	if top >= 0 && top < len(sum.Assessments) {
		sum.Assessments = sum.Assessments[:top]
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}

	fmt.Fprintf(os.Stdout, "Age %g days, tensile strength %.3f MPa (%s, %s)\n\n",
		sum.AgeDays, sum.TensileStrength, sum.Formula, sum.Field)
	for _, l := range crack.Levels {
		fmt.Fprintf(os.Stdout, "  %-8s %d\n", l, sum.Counts[l])
	}
	fmt.Fprintf(os.Stdout, "\nMax TCI %.3f at node %d (%s)\n",
		sum.MaxIndex, sum.MaxNode, crack.Risk(sum.MaxIndex))

	if len(sum.Assessments) > 0 {
		fmt.Fprintf(os.Stdout, "\n%-8s  %12s  %8s  %11s  %s\n", "Node", "Stress(MPa)", "TCI", "Probability", "Level")
		for _, a := range sum.Assessments {
			fmt.Fprintf(os.Stdout, "%-8d  %12.4f  %8.3f  %11.2f  %s\n",
				a.NodeID, a.Stress, a.Index, a.Probability, a.Level)
		}
	}
	return nil
}

func init() {
	tciCmd.Flags().Int("step", 0, "solver step to assess (0 = last)")
	tciCmd.Flags().String("field", string(types.FieldVonMises), "stress field to assess")
	tciCmd.Flags().Float64("age", 0, "concrete age in days (required)")
	tciCmd.Flags().Float64("fc28", crack.DefaultFC28, "28-day compressive strength in MPa")
	tciCmd.Flags().String("formula", crack.FormulaACI, "tensile strength curve: aci, ceb or kci")
	tciCmd.Flags().Float64("fct28", 0, "28-day tensile strength in MPa for ceb/kci (0 = 10% of fc28)")
	tciCmd.Flags().Float64("a", 1, "CEB-FIP parameter a")
	tciCmd.Flags().Float64("b", 1, "CEB-FIP parameter b")
	tciCmd.Flags().Float64("scale", 1, "factor converting stress values to MPa")
	tciCmd.Flags().Int("top", 10, "number of highest-index nodes to list (-1 = all)")
	tciCmd.Flags().Bool("json", false, "output the assessment as JSON")

	rootCmd.AddCommand(tciCmd)
}
