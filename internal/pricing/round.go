package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Round2 rounds to 2 decimal places, half away from zero. On the exact decimal
// representation this is half-up for the non-negative values prices take, and
// repeated application never drifts the way binary floats do.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// roundPrice is Round2 with the non-negative floor every price must respect.
func roundPrice(d decimal.Decimal) decimal.Decimal {
	r := Round2(d)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}
