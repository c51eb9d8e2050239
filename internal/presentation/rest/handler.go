package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/application/usecase"
)

const maxBodyBytes = 1 << 20

// ReadinessCheck reports whether the service's storage can take traffic.
type ReadinessCheck func(ctx context.Context) error

// Handler serves the public HTTP surface: probes, pre-approval, quotes and
// tracking. Reviewer operations are only exposed over gRPC.
type Handler struct {
	uc     usecase.Suite
	ready  ReadinessCheck
	logger *slog.Logger
}

// NewHandler creates the HTTP handler. A nil ready check always passes.
func NewHandler(uc usecase.Suite, ready ReadinessCheck, logger *slog.Logger) *Handler {
	return &Handler{uc: uc, ready: ready, logger: logger}
}

// Liveness always answers ok while the process runs.
func (h *Handler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness checks storage with a short deadline.
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.ready(ctx); err != nil {
			h.logger.WarnContext(r.Context(), "readiness check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// EvaluatePreApproval scores raw financial inputs without creating a record.
func (h *Handler) EvaluatePreApproval(w http.ResponseWriter, r *http.Request) {
	var req dto.PreApprovalRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.uc.PreApproval.Execute(r.Context(), req)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// CalculateAmortization returns a payment schedule.
func (h *Handler) CalculateAmortization(w http.ResponseWriter, r *http.Request) {
	var req dto.AmortizationRequest
	if !h.decode(w, r, &req) {
		return
	}
	plan, err := h.uc.Amortization.Execute(r.Context(), req)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// RequiredApprovalLevel answers GET /approval-level?amount=.
func (h *Handler) RequiredApprovalLevel(w http.ResponseWriter, r *http.Request) {
	amount, err := decimal.NewFromString(r.URL.Query().Get("amount"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "amount must be a decimal number")
		return
	}
	resp, err := h.uc.Rules.RequiredApprovalLevel(amount)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// TrackApplication shows an applicant the status behind a radication number.
func (h *Handler) TrackApplication(w http.ResponseWriter, r *http.Request) {
	resp, err := h.uc.Track.Execute(r.Context(), chi.URLParam(r, "radication"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// decode reads a JSON body into v, rejecting unknown fields and trailing
// data. It writes the error response itself and reports whether to go on.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "VALIDATION_ERROR", "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "malformed JSON body: "+err.Error())
		return false
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "request body must hold a single JSON object")
		return false
	}
	return true
}
