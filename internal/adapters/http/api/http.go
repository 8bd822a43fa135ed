// Package api adapts the scenario registry to net/http.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/okian/feint/internal/domain/scenario"
	"github.com/okian/feint/pkg/logger"
)

// Dependencies required by HTTP handlers. An interface bundle keeps the
// handler layer loosely coupled to the app service.
type Dependencies interface {
	// Registry exposes the immutable scenario registry.
	Registry() *scenario.Registry

	// BodyLogLimit caps how many bytes of a POST body are logged.
	BodyLogLimit() int
}

// Server wires HTTP routes for the mock API.
type Server struct {
	deps          Dependencies
	statsHandler  *StatsHandler
	healthHandler *HealthHandler
	log           logger.Logger
}

// NewServer creates an API server over the given dependencies.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		deps:          deps,
		statsHandler:  NewStatsHandler(statsProvider),
		healthHandler: NewHealthHandler(),
		log:           logger.Named("api"),
	}
}

// Register attaches all HTTP routes to mux: one route per scenario plus the
// operational /healthz and /stats endpoints.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	for _, e := range s.deps.Registry().All() {
		name := strings.TrimPrefix(e.Path, "/")
		mux.HandleFunc(e.Path, RequestIDMiddleware(MetricsMiddleware(s.scenarioHandler(e), name)))
		s.log.Debug(ctx, "registered scenario route",
			logger.String("path", e.Path),
			logger.String("describe", e.Describe),
		)
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
