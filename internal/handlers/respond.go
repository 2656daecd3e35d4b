package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"eventflow/internal/models"
)

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error  string                  `json:"error"`
	Fields models.ValidationErrors `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// statusFor maps service errors to HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrEventNotFound),
		errors.Is(err, models.ErrTicketNotFound),
		errors.Is(err, models.ErrItemNotFound),
		errors.Is(err, models.ErrCheckoutNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidStage),
		errors.Is(err, models.ErrPaymentInProgress),
		errors.Is(err, models.ErrEmptyCart),
		errors.Is(err, models.ErrSoldOut),
		errors.Is(err, models.ErrSaleEnded),
		errors.Is(err, models.ErrNotTransferable):
		return http.StatusConflict
	case errors.Is(err, models.ErrPaymentFailed):
		return http.StatusPaymentRequired
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes err as JSON. Field errors become 422 with the
// per-field messages; unknown errors are logged and hidden behind a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var fields models.ValidationErrors
	if errors.As(err, &fields) {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: "Please correct the highlighted fields", Fields: fields})
		return
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
		writeError(w, status, "Something went wrong. Please try again.")
		return
	}
	writeError(w, status, err.Error())
}
