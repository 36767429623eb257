package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/billbuster/billbuster/internal/models"
	"github.com/billbuster/billbuster/internal/reminder"
	"github.com/billbuster/billbuster/internal/service"
)

// ReminderHandler exposes the reminder lifecycle over HTTP.
type ReminderHandler struct {
	workflow *reminder.Workflow
	groups   *service.GroupService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewReminderHandler builds the handler. The group service is used for
// membership checks on list reads.
func NewReminderHandler(workflow *reminder.Workflow, groups *service.GroupService, logger *slog.Logger) *ReminderHandler {
	return &ReminderHandler{workflow: workflow, groups: groups, validate: validator.New(), logger: logger}
}

type createReminderRequest struct {
	GroupID     string          `json:"group_id" validate:"required"`
	RecipientID string          `json:"recipient_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Message     string          `json:"message" validate:"required,max=500"`
}

func (h *ReminderHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createReminderRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	created, err := h.workflow.Create(r.Context(), reminder.CreateRequest{
		GroupID:     req.GroupID,
		RequesterID: MemberID(r.Context()),
		RecipientID: req.RecipientID,
		Amount:      req.Amount,
		Message:     req.Message,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// dispatch re-enqueues a failed reminder. The transition back through
// dispatch happens on the worker; this endpoint only accepts the retry.
func (h *ReminderHandler) dispatch(w http.ResponseWriter, r *http.Request) {
	reminderID := chi.URLParam(r, "reminderID")
	if err := h.workflow.Retry(r.Context(), reminderID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"id": reminderID, "state": "queued"})
}

// list returns a group's reminders, filtered by the optional comma
// separated status query parameter.
func (h *ReminderHandler) list(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	if _, err := h.groups.GetGroup(r.Context(), groupID, MemberID(r.Context())); err != nil {
		writeServiceError(w, err)
		return
	}

	statuses, err := parseStatuses(r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	reminders, err := h.workflow.List(r.Context(), groupID, statuses...)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if reminders == nil {
		reminders = []*models.Reminder{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reminders": reminders})
}

func parseStatuses(raw string) ([]models.ReminderStatus, error) {
	if raw == "" {
		return nil, nil
	}
	var statuses []models.ReminderStatus
	for _, part := range strings.Split(raw, ",") {
		switch s := models.ReminderStatus(strings.TrimSpace(part)); s {
		case models.ReminderPending, models.ReminderSent, models.ReminderFailed, models.ReminderAcknowledged:
			statuses = append(statuses, s)
		default:
			return nil, fmt.Errorf("unknown reminder status %q", part)
		}
	}
	return statuses, nil
}
