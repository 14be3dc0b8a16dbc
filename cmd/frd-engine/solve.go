// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/frd-engine/internal/solver"
)

var solveCmd = &cobra.Command{
	Use:   "solve [decks...]",
	Short: "Run CalculiX on input decks and collect the .frd results",
	Long: `Solve runs ccx on each .inp deck, using a local ccx binary when
available or the configured container image under docker or podman. The
.frd output is moved to <frd-dir>/<series>/ where series is the deck's
directory name. Decks already solved are skipped.

Without arguments, every deck under --inp-dir is solved.`,
	RunE: runSolve,
}

func runSolve(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, map[string]string{
		"image":   "solver.image",
		"frd-dir": "solver.frd_dir",
		"dat-dir": "solver.dat_dir",
	}); err != nil {
		return err
	}
	cfg := solverConfig()

	decks := args
	if len(decks) == 0 {
		inpDir, _ := cmd.Flags().GetString("inp-dir")
		found, err := solver.FindDecks(inpDir)
		if err != nil {
			return err
		}
		decks = found
	}
	if len(decks) == 0 {
		fmt.Println("No decks to solve.")
		return nil
	}

	runner, err := solver.DetectRunner(viper.GetString("solver.image"))
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Solving %d deck(s) with %s\n", len(decks), runner.Name())

	result := solver.SolveBatch(runner, decks, cfg, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d deck(s) failed", result.Failed)
	}
	return nil
}

func init() {
	solveCmd.Flags().String("inp-dir", "inp", "directory of input decks (contains <series>/*.inp)")
	solveCmd.Flags().String("frd-dir", "frd", "directory receiving solved .frd files")
	solveCmd.Flags().String("dat-dir", "dat", "directory receiving .dat listings (empty = leave in place)")
	solveCmd.Flags().String("image", solver.DefaultImage, "container image used when ccx is not installed")

	rootCmd.AddCommand(solveCmd)
}
