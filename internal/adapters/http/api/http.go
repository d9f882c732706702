// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/justinhuttinger/abc-to-ghl-api/internal/domain/model"
	"github.com/justinhuttinger/abc-to-ghl-api/internal/domain/window"
)

// Runner is the service surface the handlers need. Using an interface keeps
// the handler layer loosely coupled to the app implementation.
type Runner interface {
	RunAll(ctx context.Context, win window.Window) (model.RunResult, error)
}

// Server wires HTTP routes for the admin API.
type Server struct {
	healthHandler *HealthHandler
	syncHandler   *SyncHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(runner Runner, windowDays int) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		syncHandler:   NewSyncHandler(runner, windowDays),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/v1/sync", MetricsMiddleware(s.syncHandler.HandleSync, "sync"))
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
