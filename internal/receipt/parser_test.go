package receipt

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/billbuster/billbuster/internal/models"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name         string
		rawText      string
		wantErr      error
		validateFunc func(t *testing.T, items []models.LineItem)
	}{
		{
			name:    "typical receipt with mixed price markers",
			rawText: "Coffee 4.50\nTax 0.36\nBagel   $3.25",
			validateFunc: func(t *testing.T, items []models.LineItem) {
				want := []models.LineItem{
					{Name: "Coffee", Price: decimal.RequireFromString("4.50")},
					{Name: "Tax", Price: decimal.RequireFromString("0.36")},
					{Name: "Bagel", Price: decimal.RequireFromString("3.25")},
				}
				if len(items) != len(want) {
					t.Fatalf("got %d items, want %d", len(items), len(want))
				}
				for i, item := range items {
					if item.Name != want[i].Name {
						t.Errorf("item %d name = %q, want %q", i, item.Name, want[i].Name)
					}
					if !item.Price.Equal(want[i].Price) {
						t.Errorf("item %d price = %s, want %s", i, item.Price, want[i].Price)
					}
				}
			},
		},
		{
			name:    "header and noise lines are dropped",
			rawText: "JOE'S DINER\n123 Main St\nBurger 9.99\nThank you!",
			validateFunc: func(t *testing.T, items []models.LineItem) {
				if len(items) != 1 {
					t.Fatalf("got %d items, want 1", len(items))
				}
				if items[0].Name != "Burger" {
					t.Errorf("name = %q, want Burger", items[0].Name)
				}
			},
		},
		{
			name:    "price-only line is treated as a subtotal and dropped",
			rawText: "Sandwich 7.50\n7.50\n$7.50",
			validateFunc: func(t *testing.T, items []models.LineItem) {
				if len(items) != 1 {
					t.Fatalf("got %d items, want 1", len(items))
				}
			},
		},
		{
			name:    "only the first price token on a line is used",
			rawText: "Wine 12.00 x2 24.00",
			validateFunc: func(t *testing.T, items []models.LineItem) {
				if len(items) != 1 {
					t.Fatalf("got %d items, want 1", len(items))
				}
				if !items[0].Price.Equal(decimal.RequireFromString("12.00")) {
					t.Errorf("price = %s, want 12.00", items[0].Price)
				}
			},
		},
		{
			name:    "integer amounts without cents are not prices",
			rawText: "Table 12\nGuests 4\nPasta 14.00",
			validateFunc: func(t *testing.T, items []models.LineItem) {
				if len(items) != 1 {
					t.Fatalf("got %d items, want 1", len(items))
				}
				if items[0].Name != "Pasta" {
					t.Errorf("name = %q, want Pasta", items[0].Name)
				}
			},
		},
		{
			name:    "empty input yields no items",
			rawText: "",
			wantErr: ErrNoItems,
		},
		{
			name:    "text without any prices yields no items",
			rawText: "RECEIPT\nCASH\nTHANK YOU",
			wantErr: ErrNoItems,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := Parse(tt.rawText)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
				}
				if len(items) != 0 {
					t.Errorf("Parse() returned %d items alongside error", len(items))
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, items)
			}
		})
	}
}
