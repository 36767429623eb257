package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/billbuster/billbuster/internal/models"
	"github.com/billbuster/billbuster/internal/service"
)

// GroupHandler exposes groups, balances and settlements over HTTP.
type GroupHandler struct {
	groups   *service.GroupService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewGroupHandler builds the handler.
func NewGroupHandler(groups *service.GroupService, logger *slog.Logger) *GroupHandler {
	return &GroupHandler{groups: groups, validate: validator.New(), logger: logger}
}

type createGroupRequest struct {
	Name    string   `json:"name" validate:"required,min=1,max=120"`
	Members []string `json:"members"`
}

func (h *GroupHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	group, err := h.groups.CreateGroup(r.Context(), req.Name, req.Members, MemberID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

func (h *GroupHandler) list(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.ListGroups(r.Context(), MemberID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if groups == nil {
		groups = []*models.Group{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"groups": groups})
}

func (h *GroupHandler) get(w http.ResponseWriter, r *http.Request) {
	group, err := h.groups.GetGroup(r.Context(), chi.URLParam(r, "groupID"), MemberID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

// balances returns the signed net position per member, derived from the
// group's live bills and settlements.
func (h *GroupHandler) balances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.groups.Balances(r.Context(), chi.URLParam(r, "groupID"), MemberID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if balances == nil {
		balances = map[string]decimal.Decimal{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"balances": balances})
}

type settlementRequest struct {
	FromMemberID string          `json:"from_member_id" validate:"required"`
	ToMemberID   string          `json:"to_member_id" validate:"required"`
	Amount       decimal.Decimal `json:"amount" validate:"required"`
	Note         string          `json:"note" validate:"max=500"`
}

func (h *GroupHandler) recordSettlement(w http.ResponseWriter, r *http.Request) {
	var req settlementRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	settlement := &models.Settlement{
		GroupID:      chi.URLParam(r, "groupID"),
		FromMemberID: req.FromMemberID,
		ToMemberID:   req.ToMemberID,
		Amount:       req.Amount,
		Note:         req.Note,
		CreatedBy:    MemberID(r.Context()),
	}
	if err := h.groups.RecordSettlement(r.Context(), settlement); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, settlement)
}
