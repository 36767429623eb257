package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/billbuster/billbuster/internal/ledger"
	"github.com/billbuster/billbuster/internal/models"
	"github.com/billbuster/billbuster/internal/receipt"
	"github.com/billbuster/billbuster/internal/storage"
)

// BillService handles receipt scanning and the bill lifecycle: parse,
// assign, save (the freeze point) and supersede.
type BillService struct {
	store      storage.Store
	recognizer receipt.Recognizer
	cache      *ledger.Cache
	locks      *groupLocks
	logger     *slog.Logger
}

// NewBillService wires the bill service.
func NewBillService(store storage.Store, recognizer receipt.Recognizer, cache *ledger.Cache, logger *slog.Logger) *BillService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BillService{
		store:      store,
		recognizer: recognizer,
		cache:      cache,
		locks:      newGroupLocks(),
		logger:     logger,
	}
}

// Scan runs the image through the external text-recognition service and
// parses the result into line items. A recognition failure propagates as
// receipt.ErrRecognitionFailed; a parse that yields nothing returns
// receipt.ErrNoItems with no items, which callers surface as an editable
// empty list rather than an error page.
func (s *BillService) Scan(ctx context.Context, image []byte, contentType string) ([]models.LineItem, error) {
	text, err := s.recognizer.Recognize(ctx, image, contentType)
	if err != nil {
		return nil, err
	}

	items, err := receipt.Parse(text)
	if err != nil {
		s.logger.Info("scan yielded no items", "text_bytes", len(text))
		return nil, err
	}
	s.logger.Debug("receipt parsed", "items", len(items))
	return items, nil
}

// SaveBill validates and persists a new bill. This is the commit that
// freezes the bill: the store writes the bill, its items and assignments
// atomically, and the group's cached balances are invalidated.
func (s *BillService) SaveBill(ctx context.Context, bill *models.Bill) error {
	group, err := s.store.GetGroup(ctx, bill.GroupID)
	if err != nil {
		return err
	}
	if err := validateBill(bill, group); err != nil {
		return err
	}

	unlock := s.locks.lock(bill.GroupID)
	defer unlock()

	if err := s.store.CreateBill(ctx, bill); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, bill.GroupID)
	s.logger.Info("bill saved", "bill_id", bill.ID, "group_id", bill.GroupID, "items", len(bill.Items))
	return nil
}

// SupersedeBill replaces a saved bill with a new version. The old version
// stays in history with a superseded stamp; only the replacement counts
// toward balances afterwards.
func (s *BillService) SupersedeBill(ctx context.Context, oldID string, replacement *models.Bill, actorID string) error {
	old, err := s.store.GetBill(ctx, oldID)
	if err != nil {
		return err
	}
	if !old.Live() {
		return fmt.Errorf("bill %s: %w", oldID, ErrBillSuperseded)
	}
	replacement.GroupID = old.GroupID
	replacement.CreatedBy = actorID

	group, err := s.store.GetGroup(ctx, old.GroupID)
	if err != nil {
		return err
	}
	if !group.HasMember(actorID) {
		return ErrNotGroupMember
	}
	if err := validateBill(replacement, group); err != nil {
		return err
	}

	unlock := s.locks.lock(old.GroupID)
	defer unlock()

	if err := s.store.SupersedeBill(ctx, oldID, replacement); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, old.GroupID)
	s.logger.Info("bill superseded", "old_bill_id", oldID, "new_bill_id", replacement.ID, "group_id", old.GroupID)
	return nil
}

// GetBill loads a bill and computes its shares, for members of the owning
// group only.
func (s *BillService) GetBill(ctx context.Context, billID, actorID string) (*models.Bill, ledger.BillShares, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, ledger.BillShares{}, err
	}
	group, err := s.store.GetGroup(ctx, bill.GroupID)
	if err != nil {
		return nil, ledger.BillShares{}, err
	}
	if !group.HasMember(actorID) {
		return nil, ledger.BillShares{}, ErrNotGroupMember
	}

	shares, err := ledger.ComputeShares(bill.Items, bill.Assignments)
	if err != nil {
		return nil, ledger.BillShares{}, err
	}
	return bill, shares, nil
}

// ListBills retrieves the group's live bills for a member of the group.
func (s *BillService) ListBills(ctx context.Context, groupID, actorID string) ([]*models.Bill, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(actorID) {
		return nil, ErrNotGroupMember
	}
	return s.store.ListLiveBillsByGroup(ctx, groupID)
}

// validateBill rejects malformed bills at the persistence boundary: the
// creator must be a group member, item names must be non-empty, prices
// non-negative, and every assignment must reference an existing item and
// group members only.
func validateBill(bill *models.Bill, group *models.Group) error {
	if !group.HasMember(bill.CreatedBy) {
		return ErrNotGroupMember
	}
	if bill.PayerID != "" && !group.HasMember(bill.PayerID) {
		return fmt.Errorf("%w: payer %s is not a group member", ErrInvalidBill, bill.PayerID)
	}
	if len(bill.Items) == 0 {
		return fmt.Errorf("%w: a bill needs at least one item", ErrInvalidBill)
	}
	for i, item := range bill.Items {
		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("%w: item %d has an empty name", ErrInvalidBill, i)
		}
		if item.Price.IsNegative() {
			return fmt.Errorf("%w: item %d has a negative price", ErrInvalidBill, i)
		}
	}
	for idx, assignment := range bill.Assignments {
		if idx < 0 || idx >= len(bill.Items) {
			return fmt.Errorf("%w: assignment references item %d of %d", ErrInvalidBill, idx, len(bill.Items))
		}
		for _, member := range assignment.Assignees {
			if !group.HasMember(member) {
				return fmt.Errorf("%w: assignee %s is not a group member", ErrInvalidBill, member)
			}
		}
	}
	return nil
}
