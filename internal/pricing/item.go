// Package pricing holds the staged price-revision model: price items with
// committed and staged values, the selection set, bulk revisions, manual edits,
// aggregate reporting and reset.
//
// Every mutation returns a new collection. Items that did not change keep their
// pointer identity so callers can detect untouched rows with ==. Items are never
// modified in place once they are part of a collection.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Field names one price column of an item.
type Field string

const (
	FieldCost   Field = "cost"
	FieldPriceA Field = "priceA"
	FieldPriceB Field = "priceB"
	// FieldAll targets cost, priceA and priceB at once. Only valid for bulk revisions.
	FieldAll Field = "all"
)

// Fields returns the concrete price fields a selector expands to.
func (f Field) Fields() ([]Field, error) {
	switch f {
	case FieldCost, FieldPriceA, FieldPriceB:
		return []Field{f}, nil
	case FieldAll:
		return []Field{FieldCost, FieldPriceA, FieldPriceB}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidField, string(f))
	}
}

// ParseField accepts the wire names used by the store (cost, priceA, priceB, all).
func ParseField(s string) (Field, error) {
	f := Field(s)
	if _, err := f.Fields(); err != nil {
		return "", err
	}
	return f, nil
}

// PriceItem is one priceable catalog entry as loaded from the store.
//
// Cost, PriceA and PriceB are the committed values (last known server truth).
// NewCost, NewPriceA and NewPriceB are the staged values.
type PriceItem struct {
	ID          string
	PartNo      string
	Description string
	Category    string
	Qty         int

	Cost   decimal.Decimal
	PriceA decimal.Decimal
	PriceB decimal.Decimal

	NewCost   decimal.Decimal
	NewPriceA decimal.Decimal
	NewPriceB decimal.Decimal
}

// NewPriceItem builds an unmodified item: staged values start equal to committed.
func NewPriceItem(id, partNo, description, category string, qty int, cost, priceA, priceB decimal.Decimal) *PriceItem {
	if qty < 0 {
		qty = 0
	}
	return &PriceItem{
		ID:          id,
		PartNo:      partNo,
		Description: description,
		Category:    category,
		Qty:         qty,
		Cost:        cost,
		PriceA:      priceA,
		PriceB:      priceB,
		NewCost:     cost,
		NewPriceA:   priceA,
		NewPriceB:   priceB,
	}
}

// IsModified reports whether any staged value differs from its committed value.
func (it *PriceItem) IsModified() bool {
	return !it.NewCost.Equal(it.Cost) ||
		!it.NewPriceA.Equal(it.PriceA) ||
		!it.NewPriceB.Equal(it.PriceB)
}

// FieldModified reports whether a single field has a pending edit.
func (it *PriceItem) FieldModified(f Field) bool {
	return !it.Staged(f).Equal(it.Committed(f))
}

// Committed returns the committed value of f. FieldAll yields zero.
func (it *PriceItem) Committed(f Field) decimal.Decimal {
	switch f {
	case FieldCost:
		return it.Cost
	case FieldPriceA:
		return it.PriceA
	case FieldPriceB:
		return it.PriceB
	}
	return decimal.Zero
}

// Staged returns the staged value of f. FieldAll yields zero.
func (it *PriceItem) Staged(f Field) decimal.Decimal {
	switch f {
	case FieldCost:
		return it.NewCost
	case FieldPriceA:
		return it.NewPriceA
	case FieldPriceB:
		return it.NewPriceB
	}
	return decimal.Zero
}

// withStaged returns a copy of it with the staged value of f replaced.
func (it *PriceItem) withStaged(f Field, v decimal.Decimal) *PriceItem {
	cp := *it
	switch f {
	case FieldCost:
		cp.NewCost = v
	case FieldPriceA:
		cp.NewPriceA = v
	case FieldPriceB:
		cp.NewPriceB = v
	}
	return &cp
}

// Unmodified returns a copy with every staged value reset to its committed value.
// It returns it unchanged when there is nothing to reset.
func (it *PriceItem) Unmodified() *PriceItem {
	if !it.IsModified() {
		return it
	}
	cp := *it
	cp.NewCost = it.Cost
	cp.NewPriceA = it.PriceA
	cp.NewPriceB = it.PriceB
	return &cp
}

// IDs returns the identifiers of items in collection order.
func IDs(items []*PriceItem) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}

// Modified returns the items with pending edits, in collection order.
func Modified(items []*PriceItem) []*PriceItem {
	var out []*PriceItem
	for _, it := range items {
		if it.IsModified() {
			out = append(out, it)
		}
	}
	return out
}

// CarryStaged copies the staged values of the listed items from prev onto the
// matching items of fresh, so edits survive a reload. Items of fresh that are
// not listed, or listed items that prev does not hold, keep pointer identity.
func CarryStaged(fresh, prev []*PriceItem, ids []string) []*PriceItem {
	if len(ids) == 0 {
		return fresh
	}
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}
	staged := make(map[string]*PriceItem, len(ids))
	for _, it := range prev {
		if _, ok := keep[it.ID]; ok {
			staged[it.ID] = it
		}
	}

	out := make([]*PriceItem, len(fresh))
	for i, it := range fresh {
		old, ok := staged[it.ID]
		if !ok {
			out[i] = it
			continue
		}
		cp := *it
		cp.NewCost = old.NewCost
		cp.NewPriceA = old.NewPriceA
		cp.NewPriceB = old.NewPriceB
		out[i] = &cp
	}
	return out
}
