package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/billbuster/billbuster/internal/models"
)

// debtMatrix accumulates directed debts: matrix[ower][payee] = amount.
type debtMatrix map[string]map[string]decimal.Decimal

func (m debtMatrix) add(ower, payee string, amount decimal.Decimal) {
	if ower == payee || amount.IsZero() {
		return
	}
	row, ok := m[ower]
	if !ok {
		row = make(map[string]decimal.Decimal)
		m[ower] = row
	}
	row[payee] = row[payee].Add(amount)
}

func (m debtMatrix) owed(ower, payee string) decimal.Decimal {
	return m[ower][payee]
}

// Balances replays the group's live bills and settlements into a signed net
// balance per member: positive means the group owes the member, negative
// means the member owes the group.
//
// The computation is purely additive over the debt matrix, so it is
// deterministic and independent of the order bills are applied in. Bills
// that have been superseded by a later version are skipped.
func Balances(bills []*models.Bill, settlements []*models.Settlement) (map[string]decimal.Decimal, error) {
	matrix, err := buildMatrix(bills, settlements)
	if err != nil {
		return nil, err
	}

	members := make(map[string]bool)
	for ower, row := range matrix {
		members[ower] = true
		for payee := range row {
			members[payee] = true
		}
	}

	balances := make(map[string]decimal.Decimal, len(members))
	for member := range members {
		net := decimal.Zero
		for other := range members {
			if other == member {
				continue
			}
			// What the other owes this member, minus the reverse.
			net = net.Add(matrix.owed(other, member)).Sub(matrix.owed(member, other))
		}
		balances[member] = net
	}
	return balances, nil
}

// PairNet returns how much the recipient owes the requester after netting
// both directions. Positive means the recipient owes the requester.
func PairNet(bills []*models.Bill, settlements []*models.Settlement, requesterID, recipientID string) (decimal.Decimal, error) {
	matrix, err := buildMatrix(bills, settlements)
	if err != nil {
		return decimal.Zero, err
	}
	return matrix.owed(recipientID, requesterID).Sub(matrix.owed(requesterID, recipientID)), nil
}

// buildMatrix folds bills and settlements into the directed debt matrix.
// A settlement from A to B counts as a debt B owes A, which cancels A's
// original debt during netting.
func buildMatrix(bills []*models.Bill, settlements []*models.Settlement) (debtMatrix, error) {
	matrix := make(debtMatrix)

	for _, bill := range bills {
		if !bill.Live() {
			continue
		}
		payer := bill.Payer()
		if payer == "" {
			// No payer on record: the bill cannot produce debts.
			continue
		}
		shares, err := ComputeShares(bill.Items, bill.Assignments)
		if err != nil {
			return nil, fmt.Errorf("bill %s: %w", bill.ID, err)
		}
		for member, share := range shares.PerMember {
			matrix.add(member, payer, share)
		}
	}

	for _, s := range settlements {
		matrix.add(s.ToMemberID, s.FromMemberID, s.Amount)
	}

	return matrix, nil
}
