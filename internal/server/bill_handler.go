package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/billbuster/billbuster/internal/ledger"
	"github.com/billbuster/billbuster/internal/models"
	"github.com/billbuster/billbuster/internal/observability"
	"github.com/billbuster/billbuster/internal/receipt"
	"github.com/billbuster/billbuster/internal/service"
)

// maxImageBytes caps scan uploads at 10 MB, matching what the clients allow.
const maxImageBytes = 10 << 20

// BillHandler exposes receipt scanning and the bill lifecycle over HTTP.
type BillHandler struct {
	bills    *service.BillService
	metrics  *observability.Metrics
	validate *validator.Validate
	logger   *slog.Logger
}

// NewBillHandler builds the handler.
func NewBillHandler(bills *service.BillService, metrics *observability.Metrics, logger *slog.Logger) *BillHandler {
	return &BillHandler{bills: bills, metrics: metrics, validate: validator.New(), logger: logger}
}

type scanResponse struct {
	Items   []models.LineItem `json:"items"`
	Warning string            `json:"warning,omitempty"`
}

// scan accepts raw image bytes, runs recognition and parsing, and returns
// the recovered line items. An empty result is a 200 with a warning: the
// user edits the empty list by hand instead of hitting an error page.
func (h *BillHandler) scan(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImageBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "image_too_large", "image exceeds the upload limit")
		return
	}
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "image body required")
		return
	}

	items, err := h.bills.Scan(r.Context(), body, r.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, receipt.ErrNoItems) {
			writeJSON(w, http.StatusOK, scanResponse{Items: []models.LineItem{}, Warning: "no_items"})
			return
		}
		h.logger.Error("scan failed", "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scanResponse{Items: items})
}

type assignmentRequest struct {
	ItemIndex int      `json:"item_index"`
	Assignees []string `json:"assignees"`
}

type saveBillRequest struct {
	Items       []models.LineItem   `json:"items" validate:"required,min=1"`
	Assignments []assignmentRequest `json:"assignments"`
	PayerID     string              `json:"payer_id"`
}

func (req saveBillRequest) toBill(groupID, actorID string) *models.Bill {
	bill := &models.Bill{
		GroupID:     groupID,
		Items:       req.Items,
		Assignments: make(map[int]models.Assignment, len(req.Assignments)),
		PayerID:     req.PayerID,
		CreatedBy:   actorID,
	}
	for _, a := range req.Assignments {
		bill.Assignments[a.ItemIndex] = models.Assignment{ItemIndex: a.ItemIndex, Assignees: a.Assignees}
	}
	return bill
}

type billResponse struct {
	Bill       *models.Bill               `json:"bill"`
	Shares     map[string]decimal.Decimal `json:"shares,omitempty"`
	Unassigned decimal.Decimal            `json:"unassigned"`
}

// create saves a new bill for the group. Saving is the freeze point.
func (h *BillHandler) create(w http.ResponseWriter, r *http.Request) {
	var req saveBillRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	bill := req.toBill(chi.URLParam(r, "groupID"), MemberID(r.Context()))
	if err := h.bills.SaveBill(r.Context(), bill); err != nil {
		writeServiceError(w, err)
		return
	}
	h.metrics.BillsSaved.Inc()

	shares, err := ledger.ComputeShares(bill.Items, bill.Assignments)
	if err != nil {
		h.logger.Error("compute shares after save", "bill_id", bill.ID, "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, billResponse{Bill: bill, Shares: shares.PerMember, Unassigned: shares.Unassigned})
}

// get returns one bill with its computed shares.
func (h *BillHandler) get(w http.ResponseWriter, r *http.Request) {
	bill, shares, err := h.bills.GetBill(r.Context(), chi.URLParam(r, "billID"), MemberID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, billResponse{Bill: bill, Shares: shares.PerMember, Unassigned: shares.Unassigned})
}

// supersede replaces a saved bill with a new version.
func (h *BillHandler) supersede(w http.ResponseWriter, r *http.Request) {
	var req saveBillRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	actorID := MemberID(r.Context())
	replacement := req.toBill("", actorID)
	if err := h.bills.SupersedeBill(r.Context(), chi.URLParam(r, "billID"), replacement, actorID); err != nil {
		writeServiceError(w, err)
		return
	}
	h.metrics.BillsSaved.Inc()

	shares, err := ledger.ComputeShares(replacement.Items, replacement.Assignments)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, billResponse{Bill: replacement, Shares: shares.PerMember, Unassigned: shares.Unassigned})
}

// list returns the group's live bills.
func (h *BillHandler) list(w http.ResponseWriter, r *http.Request) {
	bills, err := h.bills.ListBills(r.Context(), chi.URLParam(r, "groupID"), MemberID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if bills == nil {
		bills = []*models.Bill{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"bills": bills})
}
