// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the frd-engine CLI: statistics,
// rendering, and crack assessment of CalculiX FRD stress results, plus the
// results store, solver runner, and HTTP API.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/frd-engine/internal/envfile"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the frd-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "frd-engine",
	Short: "Stress analysis of CalculiX FRD result files",
	Long: `frd-engine reads CalculiX .frd result files, derives Von Mises stress
per node, and reports statistics and images of the stress field.

Single files are handled by stats, render, mesh, and tci. Series of results
are ingested into a local SQLite store with results, served over HTTP with
serve, and produced from input decks with solve.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFiles, _ := cmd.Flags().GetStringSlice("env-file")
		values, err := envfile.Load(envFiles...)
		if err != nil {
			return err
		}
		applied, err := envfile.Apply(values)
		if err != nil {
			return err
		}
		if len(applied) > 0 {
			fmt.Fprintf(os.Stderr, "Loaded environment: %v\n", applied)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./frd-engine.yaml or ~/.config/frd-engine/config.yaml)")
	rootCmd.PersistentFlags().StringSlice("env-file", nil, "env files to load (default: .env)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("frd-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "frd-engine"))
		}
	}

	viper.SetEnvPrefix("FRD_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
