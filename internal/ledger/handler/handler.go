// Package handler wires the validation service to HTTP. The handler stays
// thin: decode, delegate, encode.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hemicycle/internal/ledger/report"
	"hemicycle/pkg/platform/httputil"
	"hemicycle/pkg/platform/middleware/auth"
)

// Service defines the validation operations the handler needs.
type Service interface {
	Run(ctx context.Context) (*report.Report, error)
	Get(ctx context.Context, runID string) (*report.Report, error)
}

// Handler exposes validation runs over HTTP.
type Handler struct {
	service   Service
	logger    *slog.Logger
	validator auth.TokenValidator
}

// New constructs a handler. A nil validator leaves POST /runs unguarded.
func New(service Service, logger *slog.Logger, validator auth.TokenValidator) *Handler {
	return &Handler{service: service, logger: logger, validator: validator}
}

// Register mounts the validation endpoints.
func (h *Handler) Register(r chi.Router) {
	r.With(auth.RequireAuth(h.validator, h.logger)).Post("/runs", h.HandleRun)
	r.Get("/runs/{runID}", h.HandleGet)
}

// HandleRun triggers a full validation run and returns the report.
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	rep, err := h.service.Run(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "validation run failed", "error", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "validation run served",
		"run_id", rep.RunID,
		"pass", rep.Pass(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromReport(rep))
}

// HandleGet returns a previously completed run's report.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	rep, err := h.service.Get(r.Context(), runID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromReport(rep))
}
