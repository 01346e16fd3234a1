package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TransformKind selects how the magnitude of a revision is applied.
type TransformKind string

const (
	// TransformPercentage scales the base value by (1 + magnitude/100).
	TransformPercentage TransformKind = "percentage"
	// TransformFixed adds magnitude to the base value.
	TransformFixed TransformKind = "fixed"
)

// Baseline is the value a bulk transform is computed from.
type Baseline string

const (
	// BaselineCommitted computes from the committed value. Re-running a revision
	// after a manual edit discards the manual delta instead of compounding on it.
	BaselineCommitted Baseline = "committed"
	// BaselineStaged computes from the current staged value and compounds.
	BaselineStaged Baseline = "staged"
)

// BulkRevisionRequest describes a transform applied to every selected item.
type BulkRevisionRequest struct {
	Field     Field
	Kind      TransformKind
	Magnitude string // raw operator input, parsed during validation
	Reason    string
	Baseline  Baseline // empty means BaselineCommitted
}

// Revision is a validated BulkRevisionRequest.
type Revision struct {
	Fields    []Field
	Kind      TransformKind
	Magnitude decimal.Decimal
	Reason    string
	Baseline  Baseline
}

// Validate parses and checks the request. It never looks at the selection.
func (r BulkRevisionRequest) Validate() (*Revision, error) {
	fields, err := r.Field.Fields()
	if err != nil {
		return nil, invalid(err)
	}
	switch r.Kind {
	case TransformPercentage, TransformFixed:
	default:
		return nil, invalid(fmt.Errorf("%w: %q", ErrInvalidTransform, string(r.Kind)))
	}
	baseline := r.Baseline
	switch baseline {
	case "":
		baseline = BaselineCommitted
	case BaselineCommitted, BaselineStaged:
	default:
		return nil, invalid(fmt.Errorf("%w: %q", ErrInvalidBaseline, string(r.Baseline)))
	}
	raw := strings.TrimSpace(r.Magnitude)
	if raw == "" {
		return nil, invalid(ErrInvalidMagnitude)
	}
	m, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, invalid(fmt.Errorf("%w: %q", ErrInvalidMagnitude, raw))
	}
	if err := CheckMagnitude(m); err != nil {
		return nil, invalid(err)
	}
	reason := strings.TrimSpace(r.Reason)
	if reason == "" {
		return nil, invalid(ErrMissingReason)
	}
	return &Revision{Fields: fields, Kind: r.Kind, Magnitude: m, Reason: reason, Baseline: baseline}, nil
}

const magnitudeScale = 4

var maxMagnitude = decimal.New(1, 9)

// CheckMagnitude bounds a revision magnitude to ±1e9 with at most four decimal
// places. The exponent is checked first so huge scientific-notation inputs are
// rejected before any arithmetic widens them.
func CheckMagnitude(m decimal.Decimal) error {
	exp := m.Exponent()
	if exp > 9 || exp < -18 || m.Abs().GreaterThan(maxMagnitude) || !m.Equal(m.Round(magnitudeScale)) {
		return fmt.Errorf("%w: must be within ±%s with at most %d decimal places",
			ErrInvalidMagnitude, maxMagnitude, magnitudeScale)
	}
	return nil
}

// Apply computes the new value for base: rounded to 2 places, never negative.
func (rv *Revision) Apply(base decimal.Decimal) decimal.Decimal {
	return Transform(rv.Kind, base, rv.Magnitude)
}

// Transform applies a percentage or fixed-amount change to base using the
// revision rounding policy. Unknown kinds return base unchanged.
func Transform(kind TransformKind, base, magnitude decimal.Decimal) decimal.Decimal {
	switch kind {
	case TransformPercentage:
		factor := decimal.NewFromInt(1).Add(magnitude.Div(hundred))
		return roundPrice(base.Mul(factor))
	case TransformFixed:
		return roundPrice(base.Add(magnitude))
	}
	return base
}

// ApplyBulkRevision stages req on every item whose ID is in sel.
//
// Validation happens before anything is touched; on error items is returned
// as-is. Selected items come back as fresh copies, unselected items keep their
// pointer identity.
func ApplyBulkRevision(items []*PriceItem, sel *Selection, req BulkRevisionRequest) ([]*PriceItem, error) {
	if sel == nil || sel.Len() == 0 {
		return items, invalid(ErrEmptySelection)
	}
	rv, err := req.Validate()
	if err != nil {
		return items, err
	}

	out := make([]*PriceItem, len(items))
	for i, it := range items {
		if !sel.Has(it.ID) {
			out[i] = it
			continue
		}
		cp := *it
		for _, f := range rv.Fields {
			base := it.Committed(f)
			if rv.Baseline == BaselineStaged {
				base = it.Staged(f)
			}
			next := rv.Apply(base)
			switch f {
			case FieldCost:
				cp.NewCost = next
			case FieldPriceA:
				cp.NewPriceA = next
			case FieldPriceB:
				cp.NewPriceB = next
			}
		}
		out[i] = &cp
	}
	return out, nil
}
