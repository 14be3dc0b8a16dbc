// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package client talks to a running frd-engine results API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/frd-engine/internal/slider"
	"github.com/pdiddy/frd-engine/pkg/types"
)

// DefaultURL is the API address used when none is configured.
const DefaultURL = "http://localhost:8050"

// StatusError is returned for non-2xx API responses.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned %d", e.Code)
	}
	return fmt.Sprintf("api returned %d: %s", e.Code, e.Message)
}

// Client calls the results API.
type Client struct {
	baseURL    string
	http       *http.Client
	maxRetries int
}

// New returns a client for cfg.URL. A nil httpClient uses a client with a
// 30 second timeout.
func New(cfg types.ClientConfig, httpClient *http.Client) *Client {
	base := cfg.URL
	if base == "" {
		base = DefaultURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(base, "/"),
		http:       httpClient,
		maxRetries: cfg.MaxRetries,
	}
}

// SeriesNames lists the stored series.
func (c *Client) SeriesNames(ctx context.Context) ([]string, error) {
	var names []string
	err := c.do(ctx, http.MethodGet, "/api/series", nil, &names)
	return names, err
}

// Results lists the results of one series in time order.
func (c *Client) Results(ctx context.Context, series string) ([]types.ResultRecord, error) {
	var recs []types.ResultRecord
	err := c.do(ctx, http.MethodGet, "/api/series/"+url.PathEscape(series)+"/results", nil, &recs)
	return recs, err
}

// Series returns the statistics of field for each result of series.
func (c *Client) Series(ctx context.Context, series string, field types.Field) ([]types.SeriesPoint, error) {
	var points []types.SeriesPoint
	path := "/api/series/" + url.PathEscape(series) + "/stats?field=" + url.QueryEscape(string(field))
	err := c.do(ctx, http.MethodGet, path, nil, &points)
	return points, err
}

// Sliders returns the current slider states.
func (c *Client) Sliders(ctx context.Context) ([]slider.State, error) {
	var states []slider.State
	err := c.do(ctx, http.MethodGet, "/api/sliders", nil, &states)
	return states, err
}

// SetSlider moves slider id, and with it every synchronized slider. The
// returned state carries the applied, clamped value.
func (c *Client) SetSlider(ctx context.Context, id string, value float64) (slider.State, error) {
	var st slider.State
	body := map[string]float64{"value": value}
	err := c.do(ctx, http.MethodPut, "/api/sliders/"+url.PathEscape(id), body, &st)
	return st, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := doWithRetry(ctx, c.http, req, c.maxRetries)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&apiErr)
		return &StatusError{Code: resp.StatusCode, Message: apiErr.Error}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
