package pricing

import "github.com/shopspring/decimal"

// Patch carries only the price fields that changed plus the audit payload.
// Nil fields are not sent to the store, so values another actor touched in
// the meantime are left alone.
type Patch struct {
	Cost   *decimal.Decimal `json:"cost,omitempty"`
	PriceA *decimal.Decimal `json:"priceA,omitempty"`
	PriceB *decimal.Decimal `json:"priceB,omitempty"`
	Reason string           `json:"reason"`
	Actor  string           `json:"updated_by"`
}

// Empty reports whether the patch changes no price field.
func (p Patch) Empty() bool {
	return p.Cost == nil && p.PriceA == nil && p.PriceB == nil
}

// PatchFor builds the minimal patch for the pending edits.
func PatchFor(it *PriceItem, reason, actor string) Patch {
	p := Patch{Reason: reason, Actor: actor}
	if it.FieldModified(FieldCost) {
		v := it.NewCost
		p.Cost = &v
	}
	if it.FieldModified(FieldPriceA) {
		v := it.NewPriceA
		p.PriceA = &v
	}
	if it.FieldModified(FieldPriceB) {
		v := it.NewPriceB
		p.PriceB = &v
	}
	return p
}
