// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/frd-engine/internal/client"
	"github.com/pdiddy/frd-engine/pkg/types"
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Query a running frd-engine server",
	Long: `Remote talks to the API started by serve. Rate-limited requests are
retried with backoff.`,
}

var remoteSeriesCmd = &cobra.Command{
	Use:   "series [series]",
	Short: "List series, or print a field's statistics across one series",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRemoteSeries,
}

func runRemoteSeries(cmd *cobra.Command, args []string) error {
	c, err := newClient(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()

	if len(args) == 0 {
		names, err := c.SeriesNames(ctx)
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
	points, err := c.Series(ctx, args[0], field)
	if err != nil {
		return err
	}
	return printJSON(points)
}

var remoteSlidersCmd = &cobra.Command{
	Use:   "sliders",
	Short: "Print the synchronized slider states",
	RunE:  runRemoteSliders,
}

func runRemoteSliders(cmd *cobra.Command, args []string) error {
	c, err := newClient(cmd)
	if err != nil {
		return err
	}
	states, err := c.Sliders(context.Background())
	if err != nil {
		return err
	}
	for _, s := range states {
		fmt.Fprintf(os.Stdout, "%-16s %g  [%g, %g]\n", s.ID, s.Value, s.Min, s.Max)
	}
	return nil
}

var remoteSetCmd = &cobra.Command{
	Use:   "set <slider> <value>",
	Short: "Move a slider, and with it every synchronized slider",
	Args:  cobra.ExactArgs(2),
	RunE:  runRemoteSet,
}

func runRemoteSet(cmd *cobra.Command, args []string) error {
	value, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("parsing slider value %q: %w", args[1], err)
	}
	c, err := newClient(cmd)
	if err != nil {
		return err
	}
	st, err := c.SetSlider(context.Background(), args[0], value)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%s = %g\n", st.ID, st.Value)
	return nil
}

func newClient(cmd *cobra.Command) (*client.Client, error) {
	if err := bindFlags(cmd, map[string]string{
		"url":     "client.url",
		"retries": "client.max_retries",
	}); err != nil {
		return nil, err
	}
	return client.New(clientConfig(), nil), nil
}

func init() {
	remoteCmd.PersistentFlags().String("url", client.DefaultURL, "base URL of the frd-engine server")
	remoteCmd.PersistentFlags().Int("retries", 5, "retries for rate-limited requests")

	remoteSeriesCmd.Flags().String("field", string(types.FieldVonMises), "field to summarize")

	remoteCmd.AddCommand(remoteSeriesCmd)
	remoteCmd.AddCommand(remoteSlidersCmd)
	remoteCmd.AddCommand(remoteSetCmd)

	rootCmd.AddCommand(remoteCmd)
}
