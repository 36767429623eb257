package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/billbuster/billbuster/internal/notify"
	"github.com/billbuster/billbuster/internal/receipt"
	"github.com/billbuster/billbuster/internal/reminder"
	"github.com/billbuster/billbuster/internal/service"
	"github.com/billbuster/billbuster/internal/storage"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// writeServiceError maps domain error conditions to HTTP responses. The
// originating message travels with the code so callers can show it.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, service.ErrNotGroupMember):
		writeError(w, http.StatusForbidden, "not_group_member", err.Error())
	case errors.Is(err, service.ErrInvalidBill),
		errors.Is(err, service.ErrInvalidSettlement):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, service.ErrBillSuperseded):
		writeError(w, http.StatusConflict, "bill_superseded", err.Error())
	case errors.Is(err, receipt.ErrRecognitionFailed):
		writeError(w, http.StatusBadGateway, "recognition_failed", err.Error())
	case errors.Is(err, reminder.ErrInvalidTarget):
		writeError(w, http.StatusUnprocessableEntity, "invalid_reminder_target", err.Error())
	case errors.Is(err, reminder.ErrDuplicate):
		writeError(w, http.StatusConflict, "duplicate_reminder", err.Error())
	case errors.Is(err, reminder.ErrNotRetryable):
		writeError(w, http.StatusConflict, "not_retryable", err.Error())
	case errors.Is(err, notify.ErrNoDeliveryTarget):
		writeError(w, http.StatusUnprocessableEntity, "no_delivery_target", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}
