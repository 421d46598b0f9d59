// Package api exposes the cost analysis engine over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	stderrors "cost-analysis-engine/internal/common/errors"
	"cost-analysis-engine/internal/common/logger"
	"cost-analysis-engine/internal/models"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// Analyzer is the subset of the engine the HTTP surface needs.
type Analyzer interface {
	Analyze(ctx context.Context, profile models.UserProfile, opts models.AnalysisOptions) (*models.CostAnalysis, error)
	QuickComparison(ctx context.Context, profile models.UserProfile) (*models.QuickComparison, error)
	ScenarioAnalysisWithOptions(ctx context.Context, profile models.UserProfile, opts models.AnalysisOptions) (*models.ScenarioAnalysis, error)
	ClearCache(ctx context.Context)
	CacheStats() models.CacheStats
}

type analysisRequest struct {
	Profile models.UserProfile       `json:"profile"`
	Options *models.OptionsOverrides `json:"options,omitempty"`
}

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	Retryable bool   `json:"retryable"`
}

type Handler struct {
	analyzer Analyzer
	defaults models.AnalysisOptions
	logger   logger.Logger
}

func NewHandler(analyzer Analyzer, defaults models.AnalysisOptions, log logger.Logger) *Handler {
	return &Handler{
		analyzer: analyzer,
		defaults: defaults,
		logger:   logger.ForComponent(log, "api"),
	}
}

// RegisterRoutes mounts the cost analysis endpoints on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/cost-analysis", func(r chi.Router) {
		r.Post("/", h.Analyze)
		r.Post("/quick", h.QuickComparison)
		r.Post("/scenarios", h.Scenarios)

		r.Delete("/cache", h.ClearCache)
		r.Get("/cache/stats", h.CacheStats)
	})
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	analysis, err := h.analyzer.Analyze(r.Context(), req.Profile, req.Options.Apply(h.defaults))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, analysis)
}

func (h *Handler) QuickComparison(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	cmp, err := h.analyzer.QuickComparison(r.Context(), req.Profile)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, cmp)
}

func (h *Handler) Scenarios(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	scenarios, err := h.analyzer.ScenarioAnalysisWithOptions(r.Context(), req.Profile, req.Options.Apply(h.defaults))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, scenarios)
}

func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.analyzer.ClearCache(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.analyzer.CacheStats())
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (analysisRequest, bool) {
	var req analysisRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		h.respondError(w, stderrors.NewValidationFailedError(fmt.Sprintf("request body: %v", err)))
		return req, false
	}
	return req, true
}

// StatusFor maps an engine error to an HTTP status by category.
func StatusFor(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	code, ok := stderrors.CodeOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	if code == stderrors.ErrCodeProviderTimeout {
		return http.StatusGatewayTimeout
	}
	switch stderrors.GetErrorCategory(code) {
	case "VALIDATION":
		return http.StatusBadRequest
	case "CONFIDENCE":
		return http.StatusUnprocessableEntity
	case "RESOLUTION", "PROVIDER":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", map[string]interface{}{"error": err})
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	stdErr := stderrors.Normalize(err)
	fields := map[string]interface{}{
		"status":    status,
		"errorCode": string(stdErr.Code),
		"error":     err,
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("API error", fields)
	} else {
		h.logger.Warn("API request rejected", fields)
	}
	h.respondJSON(w, status, map[string]errorBody{
		"error": {
			Code:      string(stdErr.Code),
			Message:   stdErr.Message,
			Details:   stdErr.Details,
			Retryable: stdErr.Retryable,
		},
	})
}
