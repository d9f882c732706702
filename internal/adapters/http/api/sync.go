// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/justinhuttinger/abc-to-ghl-api/internal/domain/window"
)

// SyncHandler triggers sync runs over HTTP.
type SyncHandler struct {
	runner     Runner
	windowDays int
}

// NewSyncHandler creates a new sync handler. windowDays sets the trailing
// window used when the request carries no explicit dates.
func NewSyncHandler(runner Runner, windowDays int) *SyncHandler {
	return &SyncHandler{runner: runner, windowDays: windowDays}
}

// syncRequest mirrors the request schema for POST /v1/sync. Dates are
// YYYY-MM-DD; both must be given together. Days overrides the default
// trailing window when no dates are given.
type syncRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Days      int    `json:"days"`
}

func (s syncRequest) validate() error {
	if (s.StartDate == "") != (s.EndDate == "") {
		return errors.New("start_date and end_date must be given together")
	}
	for _, d := range []string{s.StartDate, s.EndDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return errors.New("dates must be YYYY-MM-DD")
		}
	}
	if s.StartDate != "" && s.StartDate > s.EndDate {
		return errors.New("start_date must not be after end_date")
	}
	if s.Days < 0 {
		return errors.New("days must not be negative")
	}
	return nil
}

// HandleSync handles POST /v1/sync requests: it resolves the date window,
// runs every configured club and kind, and returns the aggregated result.
func (h *SyncHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_json", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}

	win := window.Window{Start: req.StartDate, End: req.EndDate}
	if win.IsZero() {
		days := req.Days
		if days == 0 {
			days = h.windowDays
		}
		if days > 0 {
			win = window.ForDays(time.Now(), days)
		}
	}

	run, err := h.runner.RunAll(r.Context(), win)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "run_failed", err)
		return
	}

	writeJSON(w, http.StatusOK, run)
}
