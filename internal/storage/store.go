// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/billbuster/billbuster/internal/models"
)

var (
	// ErrNotFound reports that the requested record does not exist.
	ErrNotFound = errors.New("storage: record not found")

	// ErrStatusConflict reports that a reminder status update lost to a
	// concurrent transition. Status changes are guarded by the expected
	// current status so a lifecycle can never regress.
	ErrStatusConflict = errors.New("storage: reminder status changed concurrently")
)

// Store defines the persistence interface for the expense ledger.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// a hosted document store) without changing the service layer.
type Store interface {
	// CreateGroup persists a new group, assigning ID and CreatedAt when unset.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by ID. Returns ErrNotFound when missing.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsByMember retrieves the groups the member belongs to.
	ListGroupsByMember(ctx context.Context, memberID string) ([]*models.Group, error)

	// AddGroupMembers adds members to a group, ignoring ones already present.
	AddGroupMembers(ctx context.Context, groupID string, memberIDs []string) error

	// CreateBill persists a new bill atomically: items, assignments and the
	// bill row commit together or not at all. Assigns ID and CreatedAt when
	// unset.
	CreateBill(ctx context.Context, bill *models.Bill) error

	// GetBill retrieves a bill with its items and assignments.
	GetBill(ctx context.Context, billID string) (*models.Bill, error)

	// SupersedeBill inserts the replacement bill and stamps the old version
	// as superseded, in one transaction. The replacement's Supersedes field
	// is set to oldID.
	SupersedeBill(ctx context.Context, oldID string, replacement *models.Bill) error

	// ListLiveBillsByGroup retrieves the group's bills that have not been
	// superseded, oldest first.
	ListLiveBillsByGroup(ctx context.Context, groupID string) ([]*models.Bill, error)

	// CreateSettlement persists a settlement record.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// ListSettlementsByGroup retrieves all settlements for a group.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)

	// CreateReminder persists a new reminder.
	CreateReminder(ctx context.Context, reminder *models.Reminder) error

	// GetReminder retrieves a reminder by ID.
	GetReminder(ctx context.Context, reminderID string) (*models.Reminder, error)

	// UpdateReminderStatus transitions a reminder from the expected current
	// status to the next one, recording lastError for failures. Returns
	// ErrStatusConflict when the stored status no longer matches expected.
	UpdateReminderStatus(ctx context.Context, reminderID string, expected, next models.ReminderStatus, lastError string) error

	// ListRemindersByGroupStatus retrieves the group's reminders in the
	// given statuses; with no statuses it returns all of them.
	ListRemindersByGroupStatus(ctx context.Context, groupID string, statuses ...models.ReminderStatus) ([]*models.Reminder, error)

	// FindActiveReminder returns the pending or sent reminder for the
	// (group, recipient, requester) tuple, or ErrNotFound.
	FindActiveReminder(ctx context.Context, groupID, recipientID, requesterID string) (*models.Reminder, error)

	// UpsertMember creates or updates a member profile.
	UpsertMember(ctx context.Context, member *models.Member) error

	// GetMember retrieves a member profile by ID. Returns ErrNotFound when
	// the member has never registered a profile.
	GetMember(ctx context.Context, memberID string) (*models.Member, error)

	// Close releases any resources held by the store.
	Close() error
}
