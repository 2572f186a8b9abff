// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the enrichment pipeline over HTTP. Batch research
// runs stream per-item progress as server-sent events; single-inventor
// analysis and workbook export are plain request/response.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/meshintel/inventor-scout/internal/cache"
	"github.com/meshintel/inventor-scout/internal/export"
	"github.com/meshintel/inventor-scout/internal/pipeline"
	"github.com/meshintel/inventor-scout/pkg/errors"
	"github.com/meshintel/inventor-scout/pkg/types"
)

// BatchRunner runs one research batch. Satisfied by pipeline.Coordinator.
type BatchRunner interface {
	Run(ctx context.Context, identifiers []string, sink pipeline.EventSink) error
}

// Analyzer runs one inventor analysis. Satisfied by analysis.Orchestrator.
type Analyzer interface {
	Analyze(ctx context.Context, rec *types.PatentRecord, inventor string) (*types.InventorAnalysis, bool, error)
}

// Results reads and writes accumulated results. Satisfied by store.Store.
type Results interface {
	Patents() ([]types.PatentRecord, error)
	Analyses() ([]types.InventorAnalysis, error)
	SaveAnalysis(a *types.InventorAnalysis) error
}

// Server is the HTTP adapter over the pipeline stages.
type Server struct {
	runner   BatchRunner
	fetcher  pipeline.Fetcher
	analyzer Analyzer
	results  Results
	cache    *cache.Store
	log      *zap.Logger
	srv      *http.Server
}

// New builds the server. results may be nil, which disables export;
// cacheStore may be nil, which disables the cache diagnostics routes.
func New(cfg types.ServerConfig, runner BatchRunner, fetcher pipeline.Fetcher, analyzer Analyzer, results Results, cacheStore *cache.Store, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	addr := cfg.Addr
	if addr == "" {
		addr = ":8888"
	}

	s := &Server{
		runner:   runner,
		fetcher:  fetcher,
		analyzer: analyzer,
		results:  results,
		cache:    cacheStore,
		log:      log,
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/research", s.handleResearch).Methods(http.MethodPost)
	r.HandleFunc("/analyze-inventor", s.handleAnalyzeInventor).Methods(http.MethodPost)
	r.HandleFunc("/export", s.handleExport).Methods(http.MethodGet)
	r.HandleFunc("/cache-stats", s.handleCacheStats).Methods(http.MethodGet)
	r.HandleFunc("/clear-cache", s.handleClearCache).Methods(http.MethodPost)

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("http server listening", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type researchRequest struct {
	PatentNumbers []string `json:"patent_numbers"`
}

// handleResearch streams batch progress as SSE: one event per line in
// emission order, closed by the finished event.
func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	var req researchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.PatentNumbers) == 0 {
		writeError(w, http.StatusBadRequest, "patent_numbers is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	sink := &sseSink{w: w, flusher: flusher, log: s.log}
	if err := s.runner.Run(r.Context(), req.PatentNumbers, sink); err != nil {
		// The stream is already committed; the client sees it end early.
		s.log.Warn("batch aborted", zap.Error(err))
	}
}

// sseSink frames batch events as server-sent events.
type sseSink struct {
	w       http.ResponseWriter
	flusher http.Flusher
	log     *zap.Logger
}

func (s *sseSink) Emit(ev types.BatchEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		s.log.Warn("marshaling event failed", zap.Error(err))
		return
	}
	fmt.Fprintf(s.w, "data: %s\n\n", payload)
	s.flusher.Flush()
}

type analyzeRequest struct {
	PatentNumber string `json:"patent_number"`
	InventorName string `json:"inventor_name"`
}

type analyzeResponse struct {
	Cached bool                    `json:"cached"`
	Data   *types.InventorAnalysis `json:"data"`
}

func (s *Server) handleAnalyzeInventor(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PatentNumber == "" || req.InventorName == "" {
		writeError(w, http.StatusBadRequest, "patent_number and inventor_name are required")
		return
	}

	rec, err := s.fetcher.Fetch(r.Context(), req.PatentNumber)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	result, cached, err := s.analyzer.Analyze(r.Context(), rec, req.InventorName)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	if s.results != nil && !cached {
		if err := s.results.SaveAnalysis(result); err != nil {
			s.log.Warn("persisting analysis failed", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, analyzeResponse{Cached: cached, Data: result})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		writeError(w, http.StatusServiceUnavailable, "results store not configured")
		return
	}
	patents, err := s.results.Patents()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	analyses, err := s.results.Analyses()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="inventor-scout.xlsx"`)
	if err := export.Workbook(w, patents, analyses); err != nil {
		s.log.Warn("workbook export failed", zap.Error(err))
	}
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		writeError(w, http.StatusServiceUnavailable, "cache not configured")
		return
	}
	stats, err := s.cache.Stats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		writeError(w, http.StatusServiceUnavailable, "cache not configured")
		return
	}

	var domains []cache.Domain
	switch d := r.URL.Query().Get("domain"); d {
	case "", "all":
		domains = []cache.Domain{cache.DomainRegistry, cache.DomainAnalysis}
	case string(cache.DomainRegistry):
		domains = []cache.Domain{cache.DomainRegistry}
	case string(cache.DomainAnalysis):
		domains = []cache.Domain{cache.DomainAnalysis}
	default:
		writeError(w, http.StatusBadRequest, "domain must be registry, analysis, or all")
		return
	}

	cleared := 0
	for _, d := range domains {
		n, err := s.cache.Clear(d)
		cleared += n
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]int{"cleared": cleared})
}

// statusFor maps the error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	switch errors.CodeOf(err) {
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeInvalidInventor:
		return http.StatusBadRequest
	case errors.CodeUpstream, errors.CodeBlocked:
		return http.StatusBadGateway
	case errors.CodeTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
