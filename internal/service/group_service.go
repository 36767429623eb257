package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/billbuster/billbuster/internal/ledger"
	"github.com/billbuster/billbuster/internal/models"
	"github.com/billbuster/billbuster/internal/reminder"
	"github.com/billbuster/billbuster/internal/storage"
)

// GroupService manages groups, derived balances and settlements.
type GroupService struct {
	store    storage.Store
	cache    *ledger.Cache
	workflow *reminder.Workflow
	locks    *groupLocks
	logger   *slog.Logger
}

// NewGroupService wires the group service.
func NewGroupService(store storage.Store, cache *ledger.Cache, workflow *reminder.Workflow, logger *slog.Logger) *GroupService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GroupService{
		store:    store,
		cache:    cache,
		workflow: workflow,
		locks:    newGroupLocks(),
		logger:   logger,
	}
}

// CreateGroup persists a new group. The creator is always a member.
func (s *GroupService) CreateGroup(ctx context.Context, name string, members []string, creatorID string) (*models.Group, error) {
	seen := map[string]bool{}
	var unique []string
	for _, m := range append([]string{creatorID}, members...) {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		unique = append(unique, m)
	}

	group := &models.Group{Name: name, Members: unique}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, err
	}
	s.logger.Info("group created", "group_id", group.ID, "members", len(group.Members))
	return group, nil
}

// GetGroup retrieves a group for one of its members.
func (s *GroupService) GetGroup(ctx context.Context, groupID, actorID string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(actorID) {
		return nil, ErrNotGroupMember
	}
	return group, nil
}

// ListGroups retrieves the groups the member belongs to.
func (s *GroupService) ListGroups(ctx context.Context, memberID string) ([]*models.Group, error) {
	return s.store.ListGroupsByMember(ctx, memberID)
}

// Balances returns the signed net balance per member for the group:
// positive means the group owes the member, negative means the member owes
// the group. The result is derived by replaying the group's live bills and
// settlements; a Redis cache short-circuits repeated reads.
func (s *GroupService) Balances(ctx context.Context, groupID, actorID string) (map[string]decimal.Decimal, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(actorID) {
		return nil, ErrNotGroupMember
	}

	return s.cache.Fetch(ctx, groupID, func(ctx context.Context) (map[string]decimal.Decimal, error) {
		bills, err := s.store.ListLiveBillsByGroup(ctx, groupID)
		if err != nil {
			return nil, err
		}
		settlements, err := s.store.ListSettlementsByGroup(ctx, groupID)
		if err != nil {
			return nil, err
		}
		return ledger.Balances(bills, settlements)
	})
}

// RecordSettlement persists a payment between two members and lets the
// reminder workflow acknowledge any Sent reminders whose debt just reached
// zero.
func (s *GroupService) RecordSettlement(ctx context.Context, settlement *models.Settlement) error {
	group, err := s.store.GetGroup(ctx, settlement.GroupID)
	if err != nil {
		return err
	}
	if !group.HasMember(settlement.CreatedBy) {
		return ErrNotGroupMember
	}
	if !group.HasMember(settlement.FromMemberID) || !group.HasMember(settlement.ToMemberID) {
		return fmt.Errorf("%w: both parties must belong to the group", ErrInvalidSettlement)
	}
	if settlement.FromMemberID == settlement.ToMemberID {
		return fmt.Errorf("%w: cannot settle with yourself", ErrInvalidSettlement)
	}
	if !settlement.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidSettlement)
	}

	unlock := s.locks.lock(settlement.GroupID)
	defer unlock()

	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, settlement.GroupID)
	s.logger.Info("settlement recorded",
		"settlement_id", settlement.ID,
		"group_id", settlement.GroupID,
		"from", settlement.FromMemberID,
		"to", settlement.ToMemberID,
	)

	if err := s.workflow.AcknowledgeSettled(ctx, settlement.GroupID); err != nil {
		// The settlement is committed; acknowledgement will catch up on
		// the next settlement in the group.
		s.logger.Warn("acknowledge settled reminders", "group_id", settlement.GroupID, "error", err)
	}
	return nil
}
