package models

import "github.com/shopspring/decimal"

// Settlement is a payment between group members that clears debt.
// Debts are binary: recording a settlement for the outstanding amount is
// how a pair's balance reaches zero (there are no partial payment states).
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string `json:"id"`

	// GroupID is the group this settlement belongs to.
	GroupID string `json:"group_id"`

	// FromMemberID is the member who paid (debtor settling up).
	FromMemberID string `json:"from_member_id"`

	// ToMemberID is the member who received the payment.
	ToMemberID string `json:"to_member_id"`

	// Amount is the payment amount.
	Amount decimal.Decimal `json:"amount"`

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64 `json:"created_at"`

	// CreatedBy is the member who recorded the settlement.
	CreatedBy string `json:"created_by"`

	// Note is an optional description.
	Note string `json:"note,omitempty"`
}
