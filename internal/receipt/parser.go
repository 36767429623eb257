// Package receipt converts raw recognized receipt text into line items.
//
// The parser is a best-effort heuristic over OCR output, not a guaranteed
// one. Lines that carry no recognizable price are treated as headers or
// noise and dropped; a price with no surrounding text is treated as a
// subtotal and dropped too. An empty result is a normal outcome (ErrNoItems)
// that the caller surfaces so the user can enter items by hand.
package receipt

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/billbuster/billbuster/internal/models"
)

// ErrNoItems reports that parsing yielded no line items. Non-fatal: the
// caller shows an empty editable item list instead of blocking the flow.
var ErrNoItems = errors.New("receipt: no line items recognized")

// pricePattern matches the first price-like token on a line: an optional
// dollar marker, digits, a decimal point and two digits. The pattern never
// captures a sign, so parsed prices are always >= 0.
var pricePattern = regexp.MustCompile(`\$?\d+\.\d{2}`)

// Parse splits raw recognized text into line items, one per input line that
// carries both a price token and a non-empty name. Returns ErrNoItems
// alongside an empty slice when nothing was recognized.
func Parse(rawText string) ([]models.LineItem, error) {
	var items []models.LineItem
	for _, line := range strings.Split(rawText, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		loc := pricePattern.FindStringIndex(line)
		if loc == nil {
			continue
		}
		token := line[loc[0]:loc[1]]
		price, err := decimal.NewFromString(strings.TrimPrefix(token, "$"))
		if err != nil {
			// The pattern guarantees a parseable number; skip defensively.
			continue
		}
		name := strings.TrimSpace(line[:loc[0]] + line[loc[1]:])
		if name == "" {
			// Price-only line, e.g. a subtotal.
			continue
		}
		items = append(items, models.LineItem{Name: name, Price: price})
	}
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	return items, nil
}
