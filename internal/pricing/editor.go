package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount coerces operator input into a price. Unparseable input becomes 0
// and negative input is floored at 0; no rounding is applied.
func ParseAmount(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// SetStagedValue stages a manually typed value on one field of one item.
// The input goes through ParseAmount: unparseable text stages 0 and negative
// amounts are clamped to 0, so the staged value may differ from what was typed.
// Only the targeted item is replaced in the returned collection.
func SetStagedValue(items []*PriceItem, id string, field Field, rawInput string) ([]*PriceItem, error) {
	switch field {
	case FieldCost, FieldPriceA, FieldPriceB:
	default:
		return items, invalid(fmt.Errorf("%w: %q", ErrInvalidField, string(field)))
	}

	idx := -1
	for i, it := range items {
		if it.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return items, fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}

	out := make([]*PriceItem, len(items))
	copy(out, items)
	out[idx] = items[idx].withStaged(field, ParseAmount(rawInput))
	return out, nil
}
