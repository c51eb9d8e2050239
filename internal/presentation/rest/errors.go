package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bibbank/credit-service/internal/domain/errs"
)

// errorBody is the JSON envelope of every failed request.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var kindStatus = map[errs.Kind]int{
	errs.KindValidation:         http.StatusBadRequest,
	errs.KindPermission:         http.StatusForbidden,
	errs.KindNotFound:           http.StatusNotFound,
	errs.KindConflict:           http.StatusConflict,
	errs.KindIllegalTransition:  http.StatusUnprocessableEntity,
	errs.KindExternalDependency: http.StatusBadGateway,
}

// StatusFor maps an engine error to its HTTP status.
func StatusFor(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	if s, ok := kindStatus[errs.KindOf(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// writeErr renders err through the envelope. Unclassified errors are logged
// and reported as a generic internal error.
func (h *Handler) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "unhandled error", "path", r.URL.Path, "error", err)
		writeError(w, status, "INTERNAL", "internal error")
		return
	}
	code := errs.KindOf(err).String()
	if code == "" {
		code = http.StatusText(status)
	}
	writeError(w, status, code, errs.Reason(err))
}
