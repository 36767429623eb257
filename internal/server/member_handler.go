package server

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/billbuster/billbuster/internal/models"
	"github.com/billbuster/billbuster/internal/storage"
)

// MemberHandler manages the authenticated member's local profile, most
// importantly the device token reminders are delivered to.
type MemberHandler struct {
	store    storage.Store
	validate *validator.Validate
	logger   *slog.Logger
}

// NewMemberHandler builds the handler.
func NewMemberHandler(store storage.Store, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{store: store, validate: validator.New(), logger: logger}
}

type registerDeviceRequest struct {
	Name        string `json:"name" validate:"max=120"`
	DeviceToken string `json:"device_token" validate:"required"`
}

// registerDevice upserts the member profile with the push token for the
// current device. Members without a registered device cannot receive
// reminders; dispatch to them fails with no_delivery_target.
func (h *MemberHandler) registerDevice(w http.ResponseWriter, r *http.Request) {
	var req registerDeviceRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	member := &models.Member{
		ID:          MemberID(r.Context()),
		Name:        req.Name,
		DeviceToken: req.DeviceToken,
	}
	if err := h.store.UpsertMember(r.Context(), member); err != nil {
		writeServiceError(w, err)
		return
	}
	h.logger.Info("device registered", "member_id", member.ID)
	writeJSON(w, http.StatusOK, member)
}
