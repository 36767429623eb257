// Package ledger computes per-member shares for a bill and net balances
// across a group's full bill history. All computation is pure and
// side-effect-free; callers hold the persisted records.
package ledger

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/billbuster/billbuster/internal/models"
)

// ErrUnreconciled reports an internal consistency violation: after the
// remainder tie-break, an item's shares did not sum back to its price.
// This should never occur; it is fatal, never silently corrected.
var ErrUnreconciled = errors.New("ledger: shares do not reconcile to item price")

// two fractional digits, currency precision
const centPlaces = 2

// BillShares is the result of splitting one bill across its assignees.
type BillShares struct {
	// PerMember maps member ID to that member's total share of the bill.
	PerMember map[string]decimal.Decimal

	// Unassigned is the total price of items with no assignees. Surfaced
	// so callers can warn the user the bill is not fully allocated.
	Unassigned decimal.Decimal
}

// ComputeShares splits each assigned item's price evenly among its
// assignees. Any cent remainder from the division goes to the
// lexicographically first assignee so the item's shares always sum exactly
// to its price. Items with an empty assignee set contribute nothing and
// accumulate into the unassigned total.
func ComputeShares(items []models.LineItem, assignments map[int]models.Assignment) (BillShares, error) {
	result := BillShares{
		PerMember:  make(map[string]decimal.Decimal),
		Unassigned: decimal.Zero,
	}

	for i, item := range items {
		assignees := uniqueSorted(assignments[i].Assignees)
		if len(assignees) == 0 {
			result.Unassigned = result.Unassigned.Add(item.Price)
			continue
		}

		shares, err := splitItem(item.Price, assignees)
		if err != nil {
			return BillShares{}, fmt.Errorf("item %d (%s): %w", i, item.Name, err)
		}
		for member, share := range shares {
			result.PerMember[member] = result.PerMember[member].Add(share)
		}
	}

	return result, nil
}

// splitItem divides price evenly among the sorted assignees, assigning the
// remainder to the first. Verifies the reconciliation invariant before
// returning.
func splitItem(price decimal.Decimal, assignees []string) (map[string]decimal.Decimal, error) {
	n := decimal.NewFromInt(int64(len(assignees)))
	base := price.Div(n).Truncate(centPlaces)
	remainder := price.Sub(base.Mul(n))

	shares := make(map[string]decimal.Decimal, len(assignees))
	for i, member := range assignees {
		share := base
		if i == 0 {
			share = share.Add(remainder)
		}
		shares[member] = share
	}

	sum := decimal.Zero
	for _, share := range shares {
		sum = sum.Add(share)
	}
	if !sum.Equal(price) {
		return nil, fmt.Errorf("%w: %s split as %s", ErrUnreconciled, price, sum)
	}
	return shares, nil
}

// Toggle flips the member in or out of the assignment's assignee set.
// Toggling the same member twice returns to the prior state.
func Toggle(a models.Assignment, memberID string) models.Assignment {
	out := models.Assignment{ItemIndex: a.ItemIndex}
	found := false
	for _, m := range a.Assignees {
		if m == memberID {
			found = true
			continue
		}
		out.Assignees = append(out.Assignees, m)
	}
	if !found {
		out.Assignees = append(out.Assignees, memberID)
	}
	return out
}

// uniqueSorted returns the member IDs deduplicated and in lexicographic
// order. Sorting makes the remainder tie-break deterministic.
func uniqueSorted(members []string) []string {
	seen := make(map[string]bool, len(members))
	var out []string
	for _, m := range members {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
