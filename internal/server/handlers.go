// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pdiddy/frd-engine/internal/slider"
	"github.com/pdiddy/frd-engine/pkg/types"
)

func (s *Server) handleSeriesNames(w http.ResponseWriter, r *http.Request) {
	names, err := s.results.SeriesNames(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	recs, err := s.results.Results(r.Context(), mux.Vars(r)["series"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if recs == nil {
		recs = []types.ResultRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleSeriesStats(w http.ResponseWriter, r *http.Request) {
	field := types.FieldVonMises
	if q := r.URL.Query().Get("field"); q != "" {
		f, err := types.ParseField(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		field = f
	}

	points, err := s.results.Series(r.Context(), mux.Vars(r)["series"], field)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if points == nil {
		points = []types.SeriesPoint{}
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	rows, err := s.results.Frame(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleResultStats(w http.ResponseWriter, r *http.Request) {
	report, err := s.results.Statistics(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleSliders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sliders.Snapshot())
}

type setSliderRequest struct {
	Value *float64 `json:"value"`
}

func (s *Server) handleSetSlider(w http.ResponseWriter, r *http.Request) {
	var req setSliderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Value == nil {
		writeError(w, http.StatusBadRequest, `body must be {"value": <number>}`)
		return
	}

	id := mux.Vars(r)["id"]
	v, err := s.sliders.Set(id, *req.Value)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, slider.State{ID: id, Value: v})
}
