// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/frd-engine/internal/server"
	"github.com/pdiddy/frd-engine/internal/slider"
	"github.com/pdiddy/frd-engine/internal/store"
)

// defaultSliders are kept in sync when none are configured.
var defaultSliders = []string{"time", "time-detail"}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored results and synchronized time sliders over HTTP",
	Long: `Serve exposes the results store as a JSON API with a websocket stream
of slider changes and Prometheus metrics on /metrics. Every configured
slider spans the result indexes of --series and moving one moves all.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, map[string]string{
		"addr":             "server.addr",
		"rate-limit":       "server.rate_limit",
		"burst":            "server.burst",
		"shutdown-timeout": "server.shutdown_timeout",
		"slider":           "server.sliders",
		"results-dir":      "results.results_dir",
	}); err != nil {
		return err
	}
	series, _ := cmd.Flags().GetString("series")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := store.NewStore(resultsConfig())
	if err != nil {
		return err
	}
	defer s.Close()

	recs, err := s.Results(ctx, series)
	if err != nil {
		return err
	}
	last := float64(len(recs) - 1)
	if last < 0 {
		last = 0
	}

	cfg := serverConfig()
	ids := cfg.Sliders
	if len(ids) == 0 {
		ids = defaultSliders
	}
	sliders := slider.NewController()
	for _, id := range ids {
		if err := sliders.Register(id, 0, last); err != nil {
			return fmt.Errorf("registering slider: %w", err)
		}
	}
	fmt.Fprintf(os.Stderr, "Serving %d result(s) with sliders %v\n", len(recs), ids)

	return server.New(cfg, s, sliders).Run(ctx)
}

func init() {
	serveCmd.Flags().String("addr", server.DefaultAddr, "listen address")
	serveCmd.Flags().Float64("rate-limit", 20, "sustained requests per second per client")
	serveCmd.Flags().Int("burst", 40, "request burst per client")
	serveCmd.Flags().Duration("shutdown-timeout", 0, "graceful shutdown limit (0 = 5s)")
	serveCmd.Flags().StringSlice("slider", nil, "slider ids kept in sync (default: time, time-detail)")
	serveCmd.Flags().String("results-dir", "results", "base directory for the results store")
	serveCmd.Flags().String("series", "", "series the sliders step through (default: all results)")

	rootCmd.AddCommand(serveCmd)
}
