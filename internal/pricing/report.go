package pricing

import "github.com/shopspring/decimal"

// Summary is the aggregate view over a collection and its selection.
type Summary struct {
	TotalItems   int             `json:"totalItems"`
	Selected     int             `json:"selected"`
	Modified     int             `json:"modified"`
	CurrentValue decimal.Decimal `json:"currentValue"`
	NewValue     decimal.Decimal `json:"newValue"`
	ValueChange  decimal.Decimal `json:"valueChange"`
}

// Summarize computes the inventory valuation at committed and staged cost.
// Sums are exact; rounding to 2 places happens once, on the totals.
func Summarize(items []*PriceItem, sel *Selection) Summary {
	current := decimal.Zero
	staged := decimal.Zero
	modified := 0
	for _, it := range items {
		qty := decimal.NewFromInt(int64(it.Qty))
		current = current.Add(it.Cost.Mul(qty))
		staged = staged.Add(it.NewCost.Mul(qty))
		if it.IsModified() {
			modified++
		}
	}
	selected := 0
	if sel != nil {
		selected = sel.Len()
	}
	return Summary{
		TotalItems:   len(items),
		Selected:     selected,
		Modified:     modified,
		CurrentValue: Round2(current),
		NewValue:     Round2(staged),
		ValueChange:  Round2(staged.Sub(current)),
	}
}
