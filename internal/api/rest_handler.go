package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"credit_oracle/internal/config"
	"credit_oracle/internal/domain"
	"credit_oracle/internal/processor"
	"credit_oracle/internal/repository"
	"credit_oracle/pkg/metrics"
)

const maxBodyBytes = 10 << 20

type APIHandler struct {
	processor      *processor.ScoreProcessor
	metrics        *metrics.MetricsCollector
	logger         *slog.Logger
	requestTimeout time.Duration
}

func NewAPIHandler(
	processor *processor.ScoreProcessor,
	metrics *metrics.MetricsCollector,
	logger *slog.Logger,
) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &APIHandler{
		processor:      processor,
		metrics:        metrics,
		logger:         logger,
		requestTimeout: 30 * time.Second,
	}
}

type BankScoreRequest struct {
	RequestID   string           `json:"request_id,omitempty"`
	LoanRequest float64          `json:"loan_request,omitempty"`
	Input       domain.BankInput `json:"input"`
}

type ExchangeScoreRequest struct {
	RequestID   string               `json:"request_id,omitempty"`
	LoanRequest float64              `json:"loan_request,omitempty"`
	Input       domain.ExchangeInput `json:"input"`
}

type VerifyResponse struct {
	RequestID string `json:"request_id"`
	Valid     bool   `json:"valid"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func (h *APIHandler) ScoreBankHandler(w http.ResponseWriter, r *http.Request) {
	var req BankScoreRequest
	if !h.decode(w, r, domain.SourceBank, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	rec, err := h.processor.ScoreBank(ctx, processor.Request{
		RequestID:   req.RequestID,
		LoanRequest: req.LoanRequest,
		Bank:        &req.Input,
	})
	h.respond(w, rec, err)
}

func (h *APIHandler) ScoreExchangeHandler(w http.ResponseWriter, r *http.Request) {
	var req ExchangeScoreRequest
	if !h.decode(w, r, domain.SourceExchange, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	rec, err := h.processor.ScoreExchange(ctx, processor.Request{
		RequestID:   req.RequestID,
		LoanRequest: req.LoanRequest,
		Exchange:    &req.Input,
	})
	h.respond(w, rec, err)
}

func (h *APIHandler) GetScoreHandler(w http.ResponseWriter, r *http.Request) {
	requestID := r.PathValue("id")
	if requestID == "" {
		h.sendError(w, "Request ID is required", http.StatusBadRequest, "MISSING_ID")
		return
	}

	rec, err := h.processor.GetResult(r.Context(), requestID)
	if err != nil {
		h.respond(w, nil, err)
		return
	}
	h.sendJSON(w, rec, http.StatusOK)
}

// VerifyScoreHandler checks the attestation of a stored score.
func (h *APIHandler) VerifyScoreHandler(w http.ResponseWriter, r *http.Request) {
	rec, err := h.processor.GetResult(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respond(w, nil, err)
		return
	}
	h.sendJSON(w, VerifyResponse{
		RequestID: rec.RequestID,
		Valid:     h.processor.VerifyResult(rec) == nil,
	}, http.StatusOK)
}

func (h *APIHandler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   "1.0.0",
	}
	h.sendJSON(w, response, http.StatusOK)
}

func (h *APIHandler) decode(w http.ResponseWriter, r *http.Request, source domain.Source, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if h.metrics != nil {
			h.metrics.RecordRejected(string(source), "invalid_request")
		}
		h.sendError(w, "Invalid request body", http.StatusBadRequest, "INVALID_REQUEST")
		return false
	}
	return true
}

func (h *APIHandler) respond(w http.ResponseWriter, rec *domain.ScoreRecord, err error) {
	switch {
	case err == nil:
		h.sendJSON(w, rec, http.StatusOK)
	case errors.Is(err, repository.ErrNotFound):
		h.sendError(w, "Score not found", http.StatusNotFound, "NOT_FOUND")
	case errors.Is(err, processor.ErrInvalidInput), errors.Is(err, processor.ErrMissingInput):
		h.sendError(w, err.Error(), http.StatusBadRequest, "VALIDATION_ERROR")
	case errors.Is(err, config.ErrNoTier):
		h.sendError(w, err.Error(), http.StatusUnprocessableEntity, "NO_TIER")
	case errors.Is(err, context.DeadlineExceeded):
		h.sendError(w, "Scoring timed out", http.StatusGatewayTimeout, "TIMEOUT")
	default:
		h.logger.Error("Scoring failed", slog.String("error", err.Error()))
		h.sendError(w, fmt.Sprintf("Scoring failed: %v", err), http.StatusInternalServerError, "PROCESSING_ERROR")
	}
}

func (h *APIHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", slog.String("error", err.Error()))
	}
}

func (h *APIHandler) sendError(w http.ResponseWriter, message string, statusCode int, code string) {
	errorResponse := ErrorResponse{
		Error: message,
		Code:  code,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(errorResponse)

	h.logger.Warn("API error response",
		slog.String("message", message),
		slog.String("code", code),
		slog.Int("status", statusCode))
}

func (h *APIHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/scores/bank", h.ScoreBankHandler)
	mux.HandleFunc("POST /api/v1/scores/exchange", h.ScoreExchangeHandler)
	mux.HandleFunc("GET /api/v1/scores/{id}", h.GetScoreHandler)
	mux.HandleFunc("GET /api/v1/scores/{id}/verify", h.VerifyScoreHandler)
	mux.HandleFunc("GET /api/health", h.HealthCheckHandler)
}
