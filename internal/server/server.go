// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes stored results and the synchronized sliders over
// HTTP, with a websocket stream of slider changes and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/pdiddy/frd-engine/internal/slider"
	"github.com/pdiddy/frd-engine/internal/store"
	"github.com/pdiddy/frd-engine/pkg/types"
)

// Defaults applied to a zero ServerConfig.
const (
	DefaultAddr            = ":8050"
	defaultRateLimit       = 20
	defaultBurst           = 40
	defaultShutdownTimeout = 5 * time.Second
)

// ResultSource is the read side of the results store.
type ResultSource interface {
	SeriesNames(ctx context.Context) ([]string, error)
	Results(ctx context.Context, series string) ([]types.ResultRecord, error)
	Series(ctx context.Context, series string, field types.Field) ([]types.SeriesPoint, error)
	Statistics(ctx context.Context, id string) (types.StatisticsReport, error)
	Frame(ctx context.Context, id string) ([]types.NodeResult, error)
}

// Server serves the results API.
type Server struct {
	cfg      types.ServerConfig
	results  ResultSource
	sliders  *slider.Controller
	router   *mux.Router
	upgrader websocket.Upgrader
}

// New builds a server over results and sliders.
func New(cfg types.ServerConfig, results ResultSource, sliders *slider.Controller) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	s := &Server{
		cfg:     cfg,
		results: results,
		sliders: sliders,
		router:  mux.NewRouter(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	limiter := newIPRateLimiter(rate.Limit(s.cfg.RateLimit), s.cfg.Burst)

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(requestID)
	api.Use(limiter.LimitMiddleware)
	api.Use(instrument)

	api.HandleFunc("/series", s.handleSeriesNames).Methods("GET")
	api.HandleFunc("/series/{series}/results", s.handleResults).Methods("GET")
	api.HandleFunc("/series/{series}/stats", s.handleSeriesStats).Methods("GET")
	api.HandleFunc("/results/{id:.+}/nodes", s.handleNodes).Methods("GET")
	api.HandleFunc("/results/{id:.+}/stats", s.handleResultStats).Methods("GET")
	api.HandleFunc("/sliders", s.handleSliders).Methods("GET")
	api.HandleFunc("/sliders/{id}", s.handleSetSlider).Methods("PUT")

	s.router.HandleFunc("/ws", s.handleWebsocket).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
}

// Handler returns the root handler with CORS applied.
func (s *Server) Handler() http.Handler {
	return cors(s.router)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving on %s: %w", s.cfg.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	log.Println("server stopped")
	return nil
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps store failures onto status codes.
func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	log.Printf("store error: %v", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}
