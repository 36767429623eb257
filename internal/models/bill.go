package models

import "github.com/shopspring/decimal"

// LineItem is a single priced line recovered from a receipt.
// It is immutable once created by the parser.
type LineItem struct {
	// Name is the item description, trimmed and non-empty.
	Name string `json:"name"`

	// Price is the item price, two fractional digits, never negative.
	// A zero price is valid (a free item the receipt listed explicitly).
	Price decimal.Decimal `json:"price"`
}

// Assignment records which members share one line item.
// An empty assignee list means the item is unsplit: it contributes nothing
// to any member's share until someone is assigned.
type Assignment struct {
	// ItemIndex is the position of the item in Bill.Items.
	ItemIndex int `json:"item_index"`

	// Assignees is the set of member IDs sharing the item. Order is not
	// significant; duplicates are not allowed.
	Assignees []string `json:"assignees"`
}

// Has reports whether the member is assigned to the item.
func (a Assignment) Has(memberID string) bool {
	for _, m := range a.Assignees {
		if m == memberID {
			return true
		}
	}
	return false
}

// Bill is one scanned or hand-entered receipt belonging to a group.
//
// A bill is freely mutable until it is saved. Saving is the commit point:
// afterwards the record is frozen history, and edits insert a superseding
// version (Supersedes points at the replaced bill, which gets SupersededAt
// stamped). Balance aggregation reads only live versions.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string `json:"id"`

	// GroupID is the group this bill belongs to.
	GroupID string `json:"group_id"`

	// Items are the parsed line items, in receipt order.
	Items []LineItem `json:"items"`

	// Assignments maps item index to the members splitting that item.
	// Indexes without an entry are treated as unassigned.
	Assignments map[int]Assignment `json:"assignments"`

	// PayerID is the member who fronted the money for the bill.
	// Defaults to CreatedBy when not set explicitly.
	PayerID string `json:"payer_id"`

	// CreatedBy is the member who saved the bill.
	CreatedBy string `json:"created_by"`

	// CreatedAt is the Unix timestamp when the bill was saved.
	CreatedAt int64 `json:"created_at"`

	// Supersedes is the ID of the bill version this one replaced, if any.
	Supersedes string `json:"supersedes,omitempty"`

	// SupersededAt is the Unix timestamp when a later version replaced
	// this bill. Zero for the live version.
	SupersededAt int64 `json:"superseded_at,omitempty"`
}

// Payer returns the member who fronted the money, falling back to the
// bill's creator when no explicit payer was recorded.
func (b *Bill) Payer() string {
	if b.PayerID != "" {
		return b.PayerID
	}
	return b.CreatedBy
}

// Live reports whether this is the current version of the bill.
func (b *Bill) Live() bool {
	return b.SupersededAt == 0
}

// Total sums the prices of all line items on the bill.
func (b *Bill) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range b.Items {
		total = total.Add(item.Price)
	}
	return total
}
