package service

import "errors"

var (
	// ErrNotGroupMember reports an operation by or about a member outside
	// the group.
	ErrNotGroupMember = errors.New("service: member does not belong to the group")

	// ErrInvalidBill reports a bill that fails schema validation: empty
	// items, assignment indexes out of range, or assignees outside the
	// group. Malformed records are rejected at the boundary instead of
	// propagating into computation.
	ErrInvalidBill = errors.New("service: invalid bill")

	// ErrBillSuperseded reports an edit against a bill version that has
	// already been replaced. Saved history is frozen; edits target the
	// live version only.
	ErrBillSuperseded = errors.New("service: bill version already superseded")

	// ErrInvalidSettlement reports a settlement that fails validation.
	ErrInvalidSettlement = errors.New("service: invalid settlement")
)
