// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/frd-engine/internal/slider"
	"github.com/pdiddy/frd-engine/internal/store"
	"github.com/pdiddy/frd-engine/pkg/types"
)

// fakeResults serves a single series with one result.
type fakeResults struct {
	lastField types.Field
}

const resultID = "C000001/2025070218"

func (f *fakeResults) SeriesNames(context.Context) ([]string, error) {
	return []string{"C000001"}, nil
}

func (f *fakeResults) Results(_ context.Context, series string) ([]types.ResultRecord, error) {
	if series != "C000001" {
		return nil, nil
	}
	return []types.ResultRecord{{ID: resultID, Series: series, NodeCount: 2}}, nil
}

func (f *fakeResults) Series(_ context.Context, series string, field types.Field) ([]types.SeriesPoint, error) {
	f.lastField = field
	return []types.SeriesPoint{{ResultID: resultID, Field: field, Summary: types.Summary{Count: 2, Max: 10}}}, nil
}

func (f *fakeResults) Statistics(_ context.Context, id string) (types.StatisticsReport, error) {
	if id != resultID {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	return types.StatisticsReport{types.FieldVonMises: {Count: 2, Max: 10}}, nil
}

func (f *fakeResults) Frame(_ context.Context, id string) ([]types.NodeResult, error) {
	if id != resultID {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	return []types.NodeResult{{NodeID: 1}, {NodeID: 2, X: 1, VonMises: 10}}, nil
}

func newTestServer(t *testing.T, cfg types.ServerConfig) (*httptest.Server, *fakeResults, *slider.Controller) {
	t.Helper()
	results := &fakeResults{}
	sliders := slider.NewController()
	require.NoError(t, sliders.Register("time", 0, 10))
	require.NoError(t, sliders.Register("time-2", 0, 10))

	srv := httptest.NewServer(New(cfg, results, sliders).Handler())
	t.Cleanup(srv.Close)
	return srv, results, sliders
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func put(t *testing.T, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestSeriesEndpoints(t *testing.T) {
	srv, results, _ := newTestServer(t, types.ServerConfig{})

	var names []string
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/series", &names))
	assert.Equal(t, []string{"C000001"}, names)

	var recs []types.ResultRecord
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/series/C000001/results", &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, resultID, recs[0].ID)

	recs = nil
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/series/other/results", &recs))
	assert.Empty(t, recs)

	var points []types.SeriesPoint
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/series/C000001/stats", &points))
	assert.Equal(t, types.FieldVonMises, results.lastField)

	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/series/C000001/stats?field=sxx", &points))
	assert.Equal(t, types.FieldSXX, results.lastField)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/series/C000001/stats?field=pressure", nil))
}

func TestResultEndpoints(t *testing.T) {
	srv, _, _ := newTestServer(t, types.ServerConfig{})

	var rows []types.NodeResult
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/results/"+resultID+"/nodes", &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, 10.0, rows[1].VonMises)

	var report types.StatisticsReport
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/results/"+resultID+"/stats", &report))
	assert.Equal(t, 10.0, report[types.FieldVonMises].Max)

	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/results/C000001/absent/nodes", nil))
}

func TestSliderEndpoints(t *testing.T) {
	srv, _, sliders := newTestServer(t, types.ServerConfig{})

	resp := put(t, srv.URL+"/api/sliders/time", `{"value": 42}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var st slider.State
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, 10.0, st.Value, "value is clamped to the slider range")

	var snap []slider.State
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/sliders", &snap))
	require.Len(t, snap, 2)
	assert.Equal(t, 10.0, snap[1].Value)
	assert.Equal(t, sliders.Snapshot(), snap)

	assert.Equal(t, http.StatusBadRequest, put(t, srv.URL+"/api/sliders/time", `{}`).StatusCode)
	assert.Equal(t, http.StatusBadRequest, put(t, srv.URL+"/api/sliders/time", `not json`).StatusCode)
	assert.Equal(t, http.StatusNotFound, put(t, srv.URL+"/api/sliders/absent", `{"value": 1}`).StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	srv, _, _ := newTestServer(t, types.ServerConfig{})

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/sliders/time", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRequestID(t *testing.T) {
	srv, _, _ := newTestServer(t, types.ServerConfig{})

	resp, err := http.Get(srv.URL + "/api/sliders")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Len(t, resp.Header.Get("X-Request-ID"), 36)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/sliders", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
}

func TestRateLimit(t *testing.T) {
	srv, _, _ := newTestServer(t, types.ServerConfig{RateLimit: 0.001, Burst: 2})

	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/sliders", nil))
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/sliders", nil))
	assert.Equal(t, http.StatusTooManyRequests, getJSON(t, srv.URL+"/api/sliders", nil))
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t, types.ServerConfig{})
	getJSON(t, srv.URL+"/api/sliders", nil)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `frd_engine_http_requests_total{code="200",route="/api/sliders"}`)
}

func TestWebsocketStreamsSliderEvents(t *testing.T) {
	srv, _, sliders := newTestServer(t, types.ServerConfig{})

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var snap Message
	require.NoError(t, conn.ReadJSON(&snap))
	assert.Equal(t, "snapshot", snap.Type)
	assert.Len(t, snap.Sliders, 2)

	put(t, srv.URL+"/api/sliders/time-2", `{"value": 3}`)

	var ev Message
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "event", ev.Type)
	require.NotNil(t, ev.Event)
	assert.Equal(t, slider.Event{Source: "time-2", Value: 3, Seq: 1}, *ev.Event)

	// Moves sent by the client are applied and echoed back.
	require.NoError(t, conn.WriteJSON(setMessage{ID: "time", Value: 6}))
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, 6.0, ev.Event.Value)
	for _, s := range sliders.Snapshot() {
		assert.Equal(t, 6.0, s.Value)
	}
}
