package models

import "github.com/shopspring/decimal"

// ReminderStatus is the lifecycle state of a payment reminder.
type ReminderStatus string

const (
	// ReminderPending is the initial state: created, not yet dispatched.
	ReminderPending ReminderStatus = "pending"
	// ReminderSent means the notification was delivered to the sender service.
	ReminderSent ReminderStatus = "sent"
	// ReminderFailed means dispatch reported an error. Retryable, but only
	// by an explicit caller action, never automatically.
	ReminderFailed ReminderStatus = "failed"
	// ReminderAcknowledged means the underlying debt reached zero after a
	// settlement. Terminal.
	ReminderAcknowledged ReminderStatus = "acknowledged"
)

// CanTransition reports whether moving from s to next is a legal lifecycle
// step. Statuses never regress: there is no path back to pending, and
// acknowledged is terminal.
func (s ReminderStatus) CanTransition(next ReminderStatus) bool {
	switch s {
	case ReminderPending:
		return next == ReminderSent || next == ReminderFailed
	case ReminderFailed:
		// Explicit retry of dispatch.
		return next == ReminderSent || next == ReminderFailed
	case ReminderSent:
		return next == ReminderAcknowledged
	default:
		return false
	}
}

// Active reports whether the reminder still counts against the one-active-
// reminder-per-debt rule.
func (s ReminderStatus) Active() bool {
	return s == ReminderPending || s == ReminderSent
}

// Reminder is a user-initiated nudge tied to an outstanding balance.
//
// Amount and Message are a snapshot captured at creation time; they are
// deliberately not re-derived from the live balance at dispatch.
type Reminder struct {
	// ID is the unique identifier for the reminder (UUID format).
	ID string `json:"id"`

	// GroupID is the group whose balance the reminder is about.
	GroupID string `json:"group_id"`

	// RecipientID is the member being reminded (the one who owes).
	RecipientID string `json:"recipient_id"`

	// RequesterID is the member who asked for the nudge (the one owed).
	RequesterID string `json:"requester_id"`

	// Amount is the outstanding amount as captured at creation time.
	Amount decimal.Decimal `json:"amount"`

	// Message is the free-text message captured at creation time.
	Message string `json:"message"`

	// Status is the current lifecycle state.
	Status ReminderStatus `json:"status"`

	// LastError records the most recent dispatch failure, if any.
	LastError string `json:"last_error,omitempty"`

	// CreatedAt is the Unix timestamp when the reminder was created.
	CreatedAt int64 `json:"created_at"`
}
