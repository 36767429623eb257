// Package reminder implements the lifecycle of payment reminders: a state
// machine from Pending through Sent or Failed to Acknowledged, tied to the
// group's outstanding balances.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/billbuster/billbuster/internal/jobs"
	"github.com/billbuster/billbuster/internal/ledger"
	"github.com/billbuster/billbuster/internal/models"
	"github.com/billbuster/billbuster/internal/notify"
	"github.com/billbuster/billbuster/internal/storage"
)

var (
	// ErrInvalidTarget reports a reminder request against a member whose
	// balance toward the requester is zero or of the wrong sign. The
	// request is rejected with no state change.
	ErrInvalidTarget = errors.New("reminder: target does not owe the requester")

	// ErrDuplicate reports that an unacknowledged reminder already exists
	// for the same (group, recipient, requester) debt.
	ErrDuplicate = errors.New("reminder: an active reminder already exists for this debt")

	// ErrNotRetryable reports a retry attempt on a reminder that is not in
	// the failed state.
	ErrNotRetryable = errors.New("reminder: only failed reminders can be retried")
)

// notificationTitle is the push title for every payment reminder.
const notificationTitle = "Payment Reminder"

// Workflow drives reminder state transitions. All transitions go through
// the store's guarded status update, so a lifecycle can never regress even
// under concurrent dispatch.
type Workflow struct {
	store  storage.Store
	queue  jobs.Enqueuer
	sender notify.Sender
	logger *slog.Logger
}

// NewWorkflow wires the reminder workflow.
func NewWorkflow(store storage.Store, queue jobs.Enqueuer, sender notify.Sender, logger *slog.Logger) *Workflow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workflow{store: store, queue: queue, sender: sender, logger: logger}
}

// CreateRequest carries the parameters for a new reminder. Amount and
// Message are snapshotted on the reminder as-is; they are never re-derived
// from the live balance later.
type CreateRequest struct {
	GroupID     string
	RequesterID string
	RecipientID string
	Amount      decimal.Decimal
	Message     string
}

// Create validates the request against the group's current balances,
// enforces the one-active-reminder-per-debt rule, persists the reminder in
// Pending and enqueues its dispatch.
func (w *Workflow) Create(ctx context.Context, req CreateRequest) (*models.Reminder, error) {
	if req.RequesterID == req.RecipientID {
		return nil, fmt.Errorf("%w: cannot remind yourself", ErrInvalidTarget)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidTarget)
	}

	group, err := w.store.GetGroup(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(req.RequesterID) || !group.HasMember(req.RecipientID) {
		return nil, fmt.Errorf("%w: both members must belong to the group", ErrInvalidTarget)
	}

	owed, err := w.pairNet(ctx, req.GroupID, req.RequesterID, req.RecipientID)
	if err != nil {
		return nil, err
	}
	if !owed.IsPositive() {
		return nil, fmt.Errorf("%w: net balance is %s", ErrInvalidTarget, owed.StringFixed(2))
	}

	if _, err := w.store.FindActiveReminder(ctx, req.GroupID, req.RecipientID, req.RequesterID); err == nil {
		return nil, ErrDuplicate
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	reminder := &models.Reminder{
		GroupID:     req.GroupID,
		RecipientID: req.RecipientID,
		RequesterID: req.RequesterID,
		Amount:      req.Amount,
		Message:     req.Message,
		Status:      models.ReminderPending,
	}
	if err := w.store.CreateReminder(ctx, reminder); err != nil {
		return nil, err
	}

	if err := w.queue.EnqueueReminderDispatch(ctx, reminder.ID); err != nil {
		// The reminder is committed; it stays Pending and the explicit
		// retry endpoint can re-enqueue it.
		w.logger.Warn("enqueue reminder dispatch", "reminder_id", reminder.ID, "error", err)
	}
	return reminder, nil
}

// Dispatch resolves the recipient's delivery token and hands the snapshot
// payload to the notification sender, transitioning the reminder to Sent or
// Failed. Already-sent and acknowledged reminders are a no-op so replayed
// dispatches stay idempotent.
func (w *Workflow) Dispatch(ctx context.Context, reminderID string) error {
	reminder, err := w.store.GetReminder(ctx, reminderID)
	if err != nil {
		return err
	}

	switch reminder.Status {
	case models.ReminderPending, models.ReminderFailed:
		// Dispatchable.
	case models.ReminderSent, models.ReminderAcknowledged:
		return nil
	default:
		return fmt.Errorf("reminder %s: unknown status %q", reminderID, reminder.Status)
	}

	token, err := w.deliveryToken(ctx, reminder.RecipientID)
	if err != nil {
		if markErr := w.store.UpdateReminderStatus(ctx, reminder.ID, reminder.Status, models.ReminderFailed, err.Error()); markErr != nil {
			w.logger.Error("mark reminder failed", "reminder_id", reminder.ID, "error", markErr)
		}
		return err
	}

	msg := notify.Message{
		Token: token,
		Title: notificationTitle,
		Body:  reminder.Message,
		Data: map[string]string{
			"reminder_id": reminder.ID,
			"group_id":    reminder.GroupID,
			"amount":      reminder.Amount.StringFixed(2),
		},
	}
	if err := w.sender.Send(ctx, msg); err != nil {
		if markErr := w.store.UpdateReminderStatus(ctx, reminder.ID, reminder.Status, models.ReminderFailed, err.Error()); markErr != nil {
			w.logger.Error("mark reminder failed", "reminder_id", reminder.ID, "error", markErr)
		}
		return err
	}

	if err := w.store.UpdateReminderStatus(ctx, reminder.ID, reminder.Status, models.ReminderSent, ""); err != nil {
		return err
	}
	w.logger.Info("reminder dispatched", "reminder_id", reminder.ID, "recipient_id", reminder.RecipientID)
	return nil
}

// List returns the group's reminders, optionally filtered by status.
func (w *Workflow) List(ctx context.Context, groupID string, statuses ...models.ReminderStatus) ([]*models.Reminder, error) {
	if len(statuses) == 0 {
		statuses = []models.ReminderStatus{
			models.ReminderPending,
			models.ReminderSent,
			models.ReminderFailed,
			models.ReminderAcknowledged,
		}
	}
	return w.store.ListRemindersByGroupStatus(ctx, groupID, statuses...)
}

// Retry re-enqueues dispatch for a failed reminder. Retrying is always an
// explicit caller action; the workflow never retries on its own.
func (w *Workflow) Retry(ctx context.Context, reminderID string) error {
	reminder, err := w.store.GetReminder(ctx, reminderID)
	if err != nil {
		return err
	}
	if reminder.Status != models.ReminderFailed {
		return fmt.Errorf("%w: status is %s", ErrNotRetryable, reminder.Status)
	}
	return w.queue.EnqueueReminderDispatch(ctx, reminderID)
}

// AcknowledgeSettled marks Sent reminders Acknowledged when the underlying
// pair balance has reached zero. Called after a settlement lands in the
// group; the recipient does not have to react for this to fire.
func (w *Workflow) AcknowledgeSettled(ctx context.Context, groupID string) error {
	sent, err := w.store.ListRemindersByGroupStatus(ctx, groupID, models.ReminderSent)
	if err != nil {
		return err
	}
	if len(sent) == 0 {
		return nil
	}

	bills, err := w.store.ListLiveBillsByGroup(ctx, groupID)
	if err != nil {
		return err
	}
	settlements, err := w.store.ListSettlementsByGroup(ctx, groupID)
	if err != nil {
		return err
	}

	for _, reminder := range sent {
		owed, err := ledger.PairNet(bills, settlements, reminder.RequesterID, reminder.RecipientID)
		if err != nil {
			return err
		}
		if owed.IsPositive() {
			continue
		}
		if err := w.store.UpdateReminderStatus(ctx, reminder.ID, models.ReminderSent, models.ReminderAcknowledged, ""); err != nil {
			if errors.Is(err, storage.ErrStatusConflict) {
				continue
			}
			return err
		}
		w.logger.Info("reminder acknowledged", "reminder_id", reminder.ID, "group_id", groupID)
	}
	return nil
}

func (w *Workflow) pairNet(ctx context.Context, groupID, requesterID, recipientID string) (decimal.Decimal, error) {
	bills, err := w.store.ListLiveBillsByGroup(ctx, groupID)
	if err != nil {
		return decimal.Zero, err
	}
	settlements, err := w.store.ListSettlementsByGroup(ctx, groupID)
	if err != nil {
		return decimal.Zero, err
	}
	return ledger.PairNet(bills, settlements, requesterID, recipientID)
}

// deliveryToken resolves the recipient's device token. A missing profile or
// empty token is a distinct NoDeliveryTarget condition, never a silent no-op.
func (w *Workflow) deliveryToken(ctx context.Context, memberID string) (string, error) {
	member, err := w.store.GetMember(ctx, memberID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", notify.ErrNoDeliveryTarget
	}
	if err != nil {
		return "", err
	}
	if member.DeviceToken == "" {
		return "", notify.ErrNoDeliveryTarget
	}
	return member.DeviceToken, nil
}
