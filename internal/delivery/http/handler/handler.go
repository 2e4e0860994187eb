package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/user/imagewatch/internal/delivery/http/response"
	"github.com/user/imagewatch/internal/usecase"
)

const (
	defaultReportWindow = 24 * time.Hour
	healthCheckTimeout  = 2 * time.Second
)

// Pinger reports whether the record store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	store    Pinger
	selector usecase.ReportSelector
	runner   usecase.Runner
	now      func() time.Time
	logger   *zap.Logger

	// running holds a token while a triggered run is in progress.
	running chan struct{}
}

func NewHandler(store Pinger, selector usecase.ReportSelector, runner usecase.Runner, now func() time.Time, logger *zap.Logger) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{
		store:    store,
		selector: selector,
		runner:   runner,
		now:      now,
		logger:   logger,
		running:  make(chan struct{}, 1),
	}
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("Health check failed", zap.Error(err))
		h.writeJSON(w, http.StatusServiceUnavailable, response.HealthResponse{Status: "unavailable", Store: "down"})
		return
	}
	h.writeJSON(w, http.StatusOK, response.HealthResponse{Status: "ok", Store: "up"})
}

// HandleLatestReport returns the report rows surfaced since ?since= (RFC3339),
// defaulting to the last 24 hours.
func (h *Handler) HandleLatestReport(w http.ResponseWriter, r *http.Request) {
	since := h.now().Add(-defaultReportWindow)
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.writeJSONError(w, "since must be an RFC3339 timestamp", http.StatusBadRequest)
			return
		}
		since = parsed
	}

	items, err := h.selector.SelectSince(r.Context(), since)
	if err != nil {
		h.logger.Error("Failed to select report items", zap.Time("since", since), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, response.NewLatestReportResponse(since, items))
}

// HandleTriggerRun runs synchronously and answers with the run summary. Only one
// run is accepted at a time per process.
func (h *Handler) HandleTriggerRun(w http.ResponseWriter, r *http.Request) {
	select {
	case h.running <- struct{}{}:
		defer func() { <-h.running }()
	default:
		h.writeJSONError(w, "A run is already in progress", http.StatusConflict)
		return
	}

	// The run finishes its bookkeeping even if the client goes away.
	summary, err := h.runner.Run(context.WithoutCancel(r.Context()))
	if err != nil {
		h.logger.Error("Triggered run failed", zap.Error(err))
		h.writeJSONError(w, "Run failed", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if summary.Skipped {
		status = http.StatusConflict
	}
	h.writeJSON(w, status, response.NewRunResponse(summary))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, response.ErrorResponse{Error: message})
}
