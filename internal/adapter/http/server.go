// Package http exposes the risk-evaluation, governance, and operational
// endpoints.
package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/hazard-sentinel/internal/adapter/crowd"
	"github.com/couchcryptid/hazard-sentinel/internal/adapter/telemetry"
	"github.com/couchcryptid/hazard-sentinel/internal/domain"
	"github.com/couchcryptid/hazard-sentinel/internal/drill"
	"github.com/couchcryptid/hazard-sentinel/internal/engine"
	"github.com/couchcryptid/hazard-sentinel/internal/workflow"
)

// adminHeader carries the shared key gating decision and drill endpoints.
const adminHeader = "X-GOV-KEY"

// Server exposes the hazard evaluation API plus health, readiness, and
// metrics endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger

	engine   *engine.Engine
	drill    *drill.Manager
	grid     *telemetry.Grid
	reports  *crowd.Store
	adminKey string
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(addr, adminKey string, eng *engine.Engine, drillMgr *drill.Manager,
	grid *telemetry.Grid, reports *crowd.Store, logger *slog.Logger) *Server {

	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger:   logger,
		engine:   eng,
		drill:    drillMgr,
		grid:     grid,
		reports:  reports,
		adminKey: adminKey,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /api/v1/proposals", s.handleListProposals)
	mux.HandleFunc("POST /api/v1/proposals/{id}/decision", s.requireAdmin(s.handleDecide))
	mux.HandleFunc("GET /api/v1/audit", s.handleAudit)
	mux.HandleFunc("POST /api/v1/drill", s.requireAdmin(s.handleDrill))
	mux.HandleFunc("GET /api/v1/telemetry", s.handleTelemetry)
	mux.HandleFunc("POST /api/v1/telemetry/{id}", s.handleSensorUpdate)
	mux.HandleFunc("POST /api/v1/reports", s.handleReport)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.engine.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// analyzeResponse pairs the fused verdict with the proposal it enqueued, if
// the verdict warranted one.
type analyzeResponse struct {
	Verdict  domain.RiskVerdict       `json:"verdict"`
	Proposal *domain.DecisionProposal `json:"proposal,omitempty"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rainMM, err := parseFloatParam(q.Get("rain_mm"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid rain_mm")
		return
	}
	lat, err := parseFloatParam(q.Get("lat"))
	if err != nil || lat < -90 || lat > 90 {
		writeError(w, http.StatusBadRequest, "invalid lat")
		return
	}
	lng, err := parseFloatParam(q.Get("lng"))
	if err != nil || lng < -180 || lng > 180 {
		writeError(w, http.StatusBadRequest, "invalid lng")
		return
	}

	verdict := s.engine.Evaluate(r.Context(), rainMM, lat, lng)
	proposal := s.engine.ProposeAndEnqueue(verdict, lat, lng)

	writeJSON(w, http.StatusOK, analyzeResponse{Verdict: verdict, Proposal: proposal})
}

func (s *Server) handleListProposals(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"proposals": s.engine.ListPending(),
	})
}

type decisionRequest struct {
	Action string `json:"action"`
	Actor  string `json:"actor"`
	Notes  string `json:"notes"`
}

func (s *Server) handleDecide(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Actor == "" {
		writeError(w, http.StatusBadRequest, "actor is required")
		return
	}

	decided, err := s.engine.Decide(r.Context(), r.PathValue("id"), req.Action, req.Actor, req.Notes)
	switch {
	case errors.Is(err, workflow.ErrInvalidAction):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, workflow.ErrProposalNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		s.logger.Error("decision failed", "error", err)
		writeError(w, http.StatusInternalServerError, "decision failed")
		return
	}
	writeJSON(w, http.StatusOK, decided)
}

func (s *Server) handleAudit(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": s.engine.AuditTrail(),
	})
}

type drillRequest struct {
	Active   bool    `json:"active"`
	Scenario string  `json:"scenario"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Actor    string  `json:"actor"`
}

func (s *Server) handleDrill(w http.ResponseWriter, r *http.Request) {
	var req drillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Actor == "" {
		writeError(w, http.StatusBadRequest, "actor is required")
		return
	}

	var state domain.SimulationOverride
	if req.Active {
		if req.Scenario == "" {
			writeError(w, http.StatusBadRequest, "scenario is required to start a drill")
			return
		}
		state = s.drill.Start(req.Actor, req.Scenario, req.Lat, req.Lng)
	} else {
		state = s.drill.Stop(req.Actor)
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	readings, err := s.grid.LiveReadings(r.Context())
	if err != nil {
		s.logger.Error("telemetry snapshot failed", "error", err)
		writeError(w, http.StatusInternalServerError, "telemetry unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"readings": readings})
}

type sensorUpdateRequest struct {
	Value float64 `json:"value"`
}

func (s *Server) handleSensorUpdate(w http.ResponseWriter, r *http.Request) {
	var req sensorUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.grid.SetValue(r.PathValue("id"), req.Value); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type reportRequest struct {
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	HazardType string  `json:"hazard_type"`
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.HazardType == "" {
		writeError(w, http.StatusBadRequest, "hazard_type is required")
		return
	}

	stored := s.reports.Add(domain.HazardReport{
		Position:   domain.Position{Lat: req.Lat, Lng: req.Lng},
		HazardType: req.HazardType,
	})
	writeJSON(w, http.StatusCreated, stored)
}

// requireAdmin gates a handler behind the shared governance key.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(adminHeader)
		if subtle.ConstantTimeCompare([]byte(key), []byte(s.adminKey)) != 1 {
			writeError(w, http.StatusForbidden, "invalid or missing governance key")
			return
		}
		next(w, r)
	}
}

func parseFloatParam(s string) (float64, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(s, 64)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
