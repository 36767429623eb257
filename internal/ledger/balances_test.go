package ledger

import (
	"testing"

	"github.com/billbuster/billbuster/internal/models"
)

func billPaidBy(payer, price string, assignees ...string) *models.Bill {
	return &models.Bill{
		GroupID: "g1",
		Items:   []models.LineItem{{Name: "item", Price: dec(price)}},
		Assignments: map[int]models.Assignment{
			0: {ItemIndex: 0, Assignees: assignees},
		},
		PayerID:   payer,
		CreatedBy: payer,
	}
}

func TestBalances(t *testing.T) {
	bills := []*models.Bill{
		billPaidBy("alice", "30.00", "alice", "bob", "carol"),
		billPaidBy("bob", "20.00", "alice", "bob"),
	}

	balances, err := Balances(bills, nil)
	if err != nil {
		t.Fatalf("Balances() error = %v", err)
	}

	// Bill 1: bob and carol each owe alice 10. Bill 2: alice owes bob 10,
	// which cancels bob's debt from bill 1.
	want := map[string]string{"alice": "10.00", "bob": "0.00", "carol": "-10.00"}
	for member, amount := range want {
		if !balances[member].Equal(dec(amount)) {
			t.Errorf("%s balance = %s, want %s", member, balances[member], amount)
		}
	}
}

func TestBalancesOrderIndependent(t *testing.T) {
	a := billPaidBy("alice", "30.00", "alice", "bob", "carol")
	b := billPaidBy("bob", "20.00", "alice", "bob")
	c := billPaidBy("carol", "9.99", "bob", "carol")

	orderings := [][]*models.Bill{
		{a, b, c},
		{c, b, a},
		{b, a, c},
	}

	var first map[string]string
	for i, bills := range orderings {
		balances, err := Balances(bills, nil)
		if err != nil {
			t.Fatalf("ordering %d: %v", i, err)
		}
		got := make(map[string]string, len(balances))
		for member, amount := range balances {
			got[member] = amount.StringFixed(2)
		}
		if first == nil {
			first = got
			continue
		}
		for member, amount := range first {
			if got[member] != amount {
				t.Errorf("ordering %d: %s balance = %s, want %s", i, member, got[member], amount)
			}
		}
	}
}

func TestBalancesSettlementClearsDebt(t *testing.T) {
	bills := []*models.Bill{
		billPaidBy("alice", "30.00", "alice", "bob", "carol"),
	}
	settlements := []*models.Settlement{
		{GroupID: "g1", FromMemberID: "bob", ToMemberID: "alice", Amount: dec("10.00")},
	}

	balances, err := Balances(bills, settlements)
	if err != nil {
		t.Fatalf("Balances() error = %v", err)
	}
	if !balances["bob"].IsZero() {
		t.Errorf("bob balance = %s, want 0 after settling up", balances["bob"])
	}
	if !balances["alice"].Equal(dec("10.00")) {
		t.Errorf("alice balance = %s, want 10.00", balances["alice"])
	}
	if !balances["carol"].Equal(dec("-10.00")) {
		t.Errorf("carol balance = %s, want -10.00", balances["carol"])
	}
}

func TestBalancesSkipsSupersededBills(t *testing.T) {
	old := billPaidBy("alice", "100.00", "alice", "bob")
	old.SupersededAt = 1700000000
	replacement := billPaidBy("alice", "30.00", "alice", "bob")

	balances, err := Balances([]*models.Bill{old, replacement}, nil)
	if err != nil {
		t.Fatalf("Balances() error = %v", err)
	}
	if !balances["bob"].Equal(dec("-15.00")) {
		t.Errorf("bob balance = %s, want -15.00 from the replacement only", balances["bob"])
	}
}

func TestBalancesFallsBackToCreatorAsPayer(t *testing.T) {
	bill := billPaidBy("", "10.00", "alice", "bob")
	bill.CreatedBy = "alice"

	balances, err := Balances([]*models.Bill{bill}, nil)
	if err != nil {
		t.Fatalf("Balances() error = %v", err)
	}
	if !balances["bob"].Equal(dec("-5.00")) {
		t.Errorf("bob balance = %s, want -5.00", balances["bob"])
	}
}

func TestPairNet(t *testing.T) {
	bills := []*models.Bill{
		billPaidBy("alice", "30.00", "alice", "bob", "carol"),
	}

	owed, err := PairNet(bills, nil, "alice", "bob")
	if err != nil {
		t.Fatalf("PairNet() error = %v", err)
	}
	if !owed.Equal(dec("10.00")) {
		t.Errorf("bob owes alice %s, want 10.00", owed)
	}

	// The reverse direction is the negation.
	reverse, err := PairNet(bills, nil, "bob", "alice")
	if err != nil {
		t.Fatalf("PairNet() error = %v", err)
	}
	if !reverse.Equal(dec("-10.00")) {
		t.Errorf("alice owes bob %s, want -10.00", reverse)
	}

	// Settling the debt brings the pair to zero.
	settlements := []*models.Settlement{
		{FromMemberID: "bob", ToMemberID: "alice", Amount: dec("10.00")},
	}
	settled, err := PairNet(bills, settlements, "alice", "bob")
	if err != nil {
		t.Fatalf("PairNet() error = %v", err)
	}
	if !settled.IsZero() {
		t.Errorf("settled pair net = %s, want 0", settled)
	}
}
