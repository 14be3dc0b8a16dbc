// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/frd-engine/internal/server"
	"github.com/pdiddy/frd-engine/internal/slider"
	"github.com/pdiddy/frd-engine/internal/store"
	"github.com/pdiddy/frd-engine/pkg/types"
)

// memoryResults serves one fixed series.
type memoryResults struct{}

func (memoryResults) SeriesNames(context.Context) ([]string, error) {
	return []string{"C000001"}, nil
}

func (memoryResults) Results(_ context.Context, series string) ([]types.ResultRecord, error) {
	return []types.ResultRecord{{ID: series + "/2025070218", Series: series, NodeCount: 4}}, nil
}

func (memoryResults) Series(_ context.Context, series string, field types.Field) ([]types.SeriesPoint, error) {
	return []types.SeriesPoint{{ResultID: series + "/2025070218", Field: field, Summary: types.Summary{Count: 4, Max: 2.5}}}, nil
}

func (memoryResults) Statistics(_ context.Context, id string) (types.StatisticsReport, error) {
	return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
}

func (memoryResults) Frame(_ context.Context, id string) ([]types.NodeResult, error) {
	return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	sliders := slider.NewController()
	require.NoError(t, sliders.Register("time", 0, 4))
	require.NoError(t, sliders.Register("time-detail", 0, 4))

	srv := httptest.NewServer(server.New(types.ServerConfig{}, memoryResults{}, sliders).Handler())
	t.Cleanup(srv.Close)
	return New(types.ClientConfig{URL: srv.URL + "/"}, srv.Client())
}

func TestClientQueries(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	names, err := c.SeriesNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"C000001"}, names)

	recs, err := c.Results(ctx, "C000001")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "C000001/2025070218", recs[0].ID)

	points, err := c.Series(ctx, "C000001", types.FieldSZZ)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, types.FieldSZZ, points[0].Field)
	assert.Equal(t, 2.5, points[0].Summary.Max)
}

func TestClientSliders(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	st, err := c.SetSlider(ctx, "time-detail", 9)
	require.NoError(t, err)
	assert.Equal(t, slider.State{ID: "time-detail", Value: 4}, st)

	states, err := c.Sliders(ctx)
	require.NoError(t, err)
	require.Len(t, states, 2)
	for _, s := range states {
		assert.Equal(t, 4.0, s.Value)
	}
}

func TestClientStatusError(t *testing.T) {
	c := newTestClient(t)

	_, err := c.SetSlider(context.Background(), "absent", 1)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Contains(t, se.Message, "absent")
}

func TestNewDefaults(t *testing.T) {
	c := New(types.ClientConfig{}, nil)
	assert.Equal(t, DefaultURL, c.baseURL)
	assert.NotNil(t, c.http)
}
