package pricing_test

import (
	"fmt"
	"testing"

	"pricedesk/internal/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Helpers ───────────────────────────────────────────────────────────────────

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func item(id string, qty int, cost, a, b string) *pricing.PriceItem {
	return pricing.NewPriceItem(id, "P-"+id, "Part "+id, "Filters", qty, d(cost), d(a), d(b))
}

func invariantHolds(t *testing.T, items []*pricing.PriceItem) {
	t.Helper()
	for _, it := range items {
		want := !it.NewCost.Equal(it.Cost) || !it.NewPriceA.Equal(it.PriceA) || !it.NewPriceB.Equal(it.PriceB)
		assert.Equal(t, want, it.IsModified(), "item %s", it.ID)
	}
}

func find(items []*pricing.PriceItem, id string) *pricing.PriceItem {
	for _, it := range items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// ── Revision engine ──────────────────────────────────────────────────────────

func TestBulkPercentageOnCost(t *testing.T) {
	items := []*pricing.PriceItem{item("1", 4, "100.00", "150.00", "140.00")}
	sel := pricing.NewSelection("1")

	out, err := pricing.ApplyBulkRevision(items, sel, pricing.BulkRevisionRequest{
		Field: pricing.FieldCost, Kind: pricing.TransformPercentage, Magnitude: "10", Reason: "adj",
	})
	require.NoError(t, err)

	assert.True(t, out[0].NewCost.Equal(d("110.00")), out[0].NewCost.String())
	assert.True(t, out[0].NewPriceA.Equal(d("150.00")))
	assert.True(t, out[0].IsModified())
	invariantHolds(t, out)
}

func TestBulkFixedClampsAtZero(t *testing.T) {
	items := []*pricing.PriceItem{item("1", 1, "10.00", "50.00", "45.00")}
	sel := pricing.NewSelection("1")

	out, err := pricing.ApplyBulkRevision(items, sel, pricing.BulkRevisionRequest{
		Field: pricing.FieldPriceA, Kind: pricing.TransformFixed, Magnitude: "-60", Reason: "clearance",
	})
	require.NoError(t, err)

	assert.True(t, out[0].NewPriceA.Equal(decimal.Zero), out[0].NewPriceA.String())
	assert.False(t, out[0].NewPriceA.IsNegative())
	assert.True(t, out[0].NewCost.Equal(d("10.00")))
}

func TestBulkAllFieldsAndUnselectedIdentity(t *testing.T) {
	a := item("a", 1, "10.00", "20.00", "30.00")
	b := item("b", 1, "10.00", "20.00", "30.00")
	items := []*pricing.PriceItem{a, b}

	out, err := pricing.ApplyBulkRevision(items, pricing.NewSelection("a"), pricing.BulkRevisionRequest{
		Field: pricing.FieldAll, Kind: pricing.TransformFixed, Magnitude: "1.5", Reason: "freight",
	})
	require.NoError(t, err)

	assert.True(t, out[0].NewCost.Equal(d("11.50")))
	assert.True(t, out[0].NewPriceA.Equal(d("21.50")))
	assert.True(t, out[0].NewPriceB.Equal(d("31.50")))
	assert.NotSame(t, a, out[0])
	assert.Same(t, b, out[1], "unselected rows keep their identity")
	// source collection untouched
	assert.True(t, a.NewCost.Equal(d("10.00")))
}

func TestBulkUsesCommittedBaselineByDefault(t *testing.T) {
	items := []*pricing.PriceItem{item("1", 1, "100.00", "0", "0")}
	sel := pricing.NewSelection("1")
	req := pricing.BulkRevisionRequest{Field: pricing.FieldCost, Kind: pricing.TransformPercentage, Magnitude: "10", Reason: "r"}

	items, err := pricing.SetStagedValue(items, "1", pricing.FieldCost, "500")
	require.NoError(t, err)

	out, err := pricing.ApplyBulkRevision(items, sel, req)
	require.NoError(t, err)
	assert.True(t, out[0].NewCost.Equal(d("110")), "manual delta discarded")

	out, err = pricing.ApplyBulkRevision(out, sel, req)
	require.NoError(t, err)
	assert.True(t, out[0].NewCost.Equal(d("110")), "same request twice does not compound")
}

func TestBulkStagedBaselineCompounds(t *testing.T) {
	items := []*pricing.PriceItem{item("1", 1, "100.00", "0", "0")}
	sel := pricing.NewSelection("1")
	req := pricing.BulkRevisionRequest{
		Field: pricing.FieldCost, Kind: pricing.TransformPercentage, Magnitude: "10", Reason: "r",
		Baseline: pricing.BaselineStaged,
	}

	out, err := pricing.ApplyBulkRevision(items, sel, req)
	require.NoError(t, err)
	out, err = pricing.ApplyBulkRevision(out, sel, req)
	require.NoError(t, err)
	assert.True(t, out[0].NewCost.Equal(d("121")), out[0].NewCost.String())
}

func TestBulkValidation(t *testing.T) {
	items := []*pricing.PriceItem{item("1", 1, "100.00", "0", "0")}
	ok := pricing.BulkRevisionRequest{Field: pricing.FieldCost, Kind: pricing.TransformFixed, Magnitude: "5", Reason: "r"}

	cases := []struct {
		name string
		sel  *pricing.Selection
		mut  func(r *pricing.BulkRevisionRequest)
		want error
	}{
		{"empty selection", pricing.NewSelection(), func(*pricing.BulkRevisionRequest) {}, pricing.ErrEmptySelection},
		{"nil selection", nil, func(*pricing.BulkRevisionRequest) {}, pricing.ErrEmptySelection},
		{"blank magnitude", pricing.NewSelection("1"), func(r *pricing.BulkRevisionRequest) { r.Magnitude = "  " }, pricing.ErrInvalidMagnitude},
		{"text magnitude", pricing.NewSelection("1"), func(r *pricing.BulkRevisionRequest) { r.Magnitude = "ten" }, pricing.ErrInvalidMagnitude},
		{"infinite magnitude", pricing.NewSelection("1"), func(r *pricing.BulkRevisionRequest) { r.Magnitude = "Inf" }, pricing.ErrInvalidMagnitude},
		{"huge exponent", pricing.NewSelection("1"), func(r *pricing.BulkRevisionRequest) { r.Magnitude = "1e50000000" }, pricing.ErrInvalidMagnitude},
		{"huge negative exponent", pricing.NewSelection("1"), func(r *pricing.BulkRevisionRequest) { r.Magnitude = "-1e999999999" }, pricing.ErrInvalidMagnitude},
		{"magnitude over a billion", pricing.NewSelection("1"), func(r *pricing.BulkRevisionRequest) { r.Magnitude = "1000000000.01" }, pricing.ErrInvalidMagnitude},
		{"too many decimals", pricing.NewSelection("1"), func(r *pricing.BulkRevisionRequest) { r.Magnitude = "0.00001" }, pricing.ErrInvalidMagnitude},
		{"tiny exponent", pricing.NewSelection("1"), func(r *pricing.BulkRevisionRequest) { r.Magnitude = "1e-50000000" }, pricing.ErrInvalidMagnitude},
		{"blank reason", pricing.NewSelection("1"), func(r *pricing.BulkRevisionRequest) { r.Reason = " \t" }, pricing.ErrMissingReason},
		{"bad field", pricing.NewSelection("1"), func(r *pricing.BulkRevisionRequest) { r.Field = "priceM" }, pricing.ErrInvalidField},
		{"bad kind", pricing.NewSelection("1"), func(r *pricing.BulkRevisionRequest) { r.Kind = "tiered" }, pricing.ErrInvalidTransform},
		{"bad baseline", pricing.NewSelection("1"), func(r *pricing.BulkRevisionRequest) { r.Baseline = "average" }, pricing.ErrInvalidBaseline},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := ok
			tc.mut(&req)
			out, err := pricing.ApplyBulkRevision(items, tc.sel, req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			var verr *pricing.ValidationError
			assert.ErrorAs(t, err, &verr)
			assert.Same(t, items[0], out[0], "nothing mutated")
			assert.False(t, out[0].IsModified())
		})
	}
}

func TestCheckMagnitudeAcceptsOrdinaryInput(t *testing.T) {
	for _, raw := range []string{"0", "10", "-12.5", "2.0125", "10.50000", "1e9", "-1e9", "1E2"} {
		assert.NoError(t, pricing.CheckMagnitude(d(raw)), raw)
	}
	for _, m := range []decimal.Decimal{decimal.New(1, 10), decimal.New(1, -5), decimal.New(5, 50000000)} {
		assert.ErrorIs(t, pricing.CheckMagnitude(m), pricing.ErrInvalidMagnitude)
	}
}

// ── Rounding ─────────────────────────────────────────────────────────────────

func TestRoundingPolicy(t *testing.T) {
	assert.Equal(t, "10.01", pricing.Transform(pricing.TransformFixed, d("10.005"), decimal.Zero).StringFixed(2))
	assert.Equal(t, "2.68", pricing.Transform(pricing.TransformPercentage, d("2.675"), decimal.Zero).String())
	// 33.33 * 1.015 = 33.82995
	assert.Equal(t, "33.83", pricing.Transform(pricing.TransformPercentage, d("33.33"), d("1.5")).String())
	assert.True(t, pricing.Transform(pricing.TransformPercentage, d("80"), d("-150")).Equal(decimal.Zero))
}

func TestRoundingNeverExceedsTwoPlacesOrGoesNegative(t *testing.T) {
	bases := []string{"0", "0.01", "1.99", "19.995", "100", "1234.56"}
	mags := []string{"-200", "-100", "-33.333", "-0.005", "0", "0.333", "7.5", "12.345", "250"}
	for _, b := range bases {
		for _, m := range mags {
			for _, k := range []pricing.TransformKind{pricing.TransformPercentage, pricing.TransformFixed} {
				got := pricing.Transform(k, d(b), d(m))
				assert.False(t, got.IsNegative(), "%s %s %s", k, b, m)
				assert.LessOrEqual(t, -got.Exponent(), int32(2), fmt.Sprintf("%s %s %s -> %s", k, b, m, got))
			}
		}
	}
}

func TestRepeatedApplicationDoesNotDrift(t *testing.T) {
	v := d("0.10")
	for i := 0; i < 1000; i++ {
		v = pricing.Transform(pricing.TransformFixed, v, d("0.10"))
	}
	assert.Equal(t, "100.1", v.String())
}

// ── Per-item editor ──────────────────────────────────────────────────────────

func TestSetStagedValue(t *testing.T) {
	a := item("a", 1, "10.00", "20.00", "30.00")
	b := item("b", 1, "10.00", "20.00", "30.00")
	items := []*pricing.PriceItem{a, b}

	out, err := pricing.SetStagedValue(items, "a", pricing.FieldPriceB, "31.255")
	require.NoError(t, err)
	assert.Equal(t, "31.255", out[0].NewPriceB.String(), "manual entry is not rounded")
	assert.True(t, out[0].IsModified())
	assert.Same(t, b, out[1])

	out, err = pricing.SetStagedValue(out, "a", pricing.FieldPriceB, "30")
	require.NoError(t, err)
	assert.False(t, out[0].IsModified(), "typing the committed value back clears the flag")
	invariantHolds(t, out)
}

func TestSetStagedValueCoercion(t *testing.T) {
	items := []*pricing.PriceItem{item("a", 1, "10.00", "20.00", "30.00")}

	out, err := pricing.SetStagedValue(items, "a", pricing.FieldCost, "abc")
	require.NoError(t, err)
	assert.True(t, out[0].NewCost.IsZero())
	assert.True(t, out[0].IsModified())

	out, err = pricing.SetStagedValue(items, "a", pricing.FieldCost, "-4")
	require.NoError(t, err)
	assert.True(t, out[0].NewCost.IsZero())
}

func TestSetStagedValueErrors(t *testing.T) {
	items := []*pricing.PriceItem{item("a", 1, "10.00", "20.00", "30.00")}

	_, err := pricing.SetStagedValue(items, "zzz", pricing.FieldCost, "1")
	assert.ErrorIs(t, err, pricing.ErrUnknownItem)

	_, err = pricing.SetStagedValue(items, "a", pricing.FieldAll, "1")
	assert.ErrorIs(t, err, pricing.ErrInvalidField)
}

// ── Selection ────────────────────────────────────────────────────────────────

func TestSelectionLifecycle(t *testing.T) {
	sel := pricing.NewSelection()
	sel.SelectAll([]string{"a", "b", "c"})
	assert.Equal(t, 3, sel.Len())
	assert.True(t, sel.AllSelected([]string{"a", "c"}))

	sel.Toggle("b", false)
	sel.Toggle("d", true)
	assert.Equal(t, []string{"a", "c", "d"}, sel.IDs())

	removed := sel.Prune([]string{"a", "b"})
	assert.Equal(t, 2, removed)
	assert.Equal(t, []string{"a"}, sel.IDs())

	sel.Clear()
	assert.Equal(t, 0, sel.Len())
	assert.False(t, sel.AllSelected(nil))
}

func TestZeroSelectionIsUsable(t *testing.T) {
	var sel pricing.Selection
	assert.Equal(t, 0, sel.Len())
	assert.False(t, sel.Has("a"))

	sel.Toggle("a", false)
	sel.Toggle("a", true)
	assert.Equal(t, []string{"a"}, sel.IDs())
	assert.Equal(t, 1, sel.Prune(nil))
}

func TestSelectAllOnlyCoversVisibleRows(t *testing.T) {
	items := []*pricing.PriceItem{
		pricing.NewPriceItem("1", "OF-100", "Oil filter", "Filters", 1, d("1"), d("1"), d("1")),
		pricing.NewPriceItem("2", "AF-200", "Air filter", "Filters", 1, d("1"), d("1"), d("1")),
		pricing.NewPriceItem("3", "BP-300", "Brake pad", "Brakes", 1, d("1"), d("1"), d("1")),
	}
	sel := pricing.NewSelection()
	sel.SelectAll(pricing.IDs(pricing.Visible(items, "FILTER", "all")))
	assert.Equal(t, []string{"1", "2"}, sel.IDs())

	sel.SelectAll(pricing.IDs(pricing.Visible(items, "", "Brakes")))
	assert.Equal(t, []string{"3"}, sel.IDs())
}

// ── Aggregate reporter ───────────────────────────────────────────────────────

func TestSummarySelectedAndModified(t *testing.T) {
	items := []*pricing.PriceItem{item("1", 2, "100.00", "0", "0"), item("2", 3, "50.00", "0", "0")}
	sel := pricing.NewSelection("1", "2")

	items, err := pricing.SetStagedValue(items, "1", pricing.FieldCost, "110.00")
	require.NoError(t, err)

	s := pricing.Summarize(items, sel)
	assert.Equal(t, 2, s.TotalItems)
	assert.Equal(t, 2, s.Selected)
	assert.Equal(t, 1, s.Modified)
	assert.Equal(t, "350", s.CurrentValue.String())
	assert.Equal(t, "370", s.NewValue.String())
	assert.Equal(t, "20", s.ValueChange.String())
}

func TestSummaryRoundsOnceAtTheEnd(t *testing.T) {
	// three rows of 0.005 each: per-term rounding would give 0.03, the exact sum is 0.015 -> 0.02
	var items []*pricing.PriceItem
	for i := 0; i < 3; i++ {
		items = append(items, item(fmt.Sprint(i), 1, "0.005", "0", "0"))
	}
	s := pricing.Summarize(items, nil)
	assert.Equal(t, "0.02", s.CurrentValue.StringFixed(2))
	assert.Equal(t, 0, s.Selected)
}

// ── Reset ────────────────────────────────────────────────────────────────────

func TestResetIsLeftInverse(t *testing.T) {
	items := []*pricing.PriceItem{
		item("1", 1, "100.00", "120.00", "115.00"),
		item("2", 5, "7.25", "9.99", "9.50"),
		item("3", 0, "0", "0", "0"),
	}
	sel := pricing.NewSelection()
	sel.SelectAll(pricing.IDs(items))

	var err error
	items, err = pricing.ApplyBulkRevision(items, sel, pricing.BulkRevisionRequest{
		Field: pricing.FieldAll, Kind: pricing.TransformPercentage, Magnitude: "12.5", Reason: "r",
	})
	require.NoError(t, err)
	items, err = pricing.SetStagedValue(items, "2", pricing.FieldPriceB, "x")
	require.NoError(t, err)
	items, err = pricing.SetStagedValue(items, "3", pricing.FieldCost, "44")
	require.NoError(t, err)
	require.NotEmpty(t, pricing.Modified(items))

	untouched := items[0].Unmodified()
	out := pricing.Reset(items, sel)
	for _, it := range out {
		assert.True(t, it.NewCost.Equal(it.Cost))
		assert.True(t, it.NewPriceA.Equal(it.PriceA))
		assert.True(t, it.NewPriceB.Equal(it.PriceB))
		assert.False(t, it.IsModified())
	}
	assert.Equal(t, 0, sel.Len())
	assert.Same(t, untouched, untouched.Unmodified())
}

// ── View helpers ─────────────────────────────────────────────────────────────

func TestPaging(t *testing.T) {
	var items []*pricing.PriceItem
	for i := 0; i < 7; i++ {
		items = append(items, item(fmt.Sprint(i), 1, "1", "1", "1"))
	}
	assert.Len(t, pricing.Page(items, 1, 5), 5)
	assert.Len(t, pricing.Page(items, 2, 5), 2)
	assert.Empty(t, pricing.Page(items, 3, 5))
	assert.Equal(t, 2, pricing.TotalPages(len(items), 5))
	assert.Equal(t, []string{"Filters"}, pricing.Categories(items))
}

func TestCarryStagedKeepsFailedEdits(t *testing.T) {
	prev := []*pricing.PriceItem{item("1", 1, "100", "150", "140"), item("2", 1, "50", "75", "70")}
	prev, err := pricing.SetStagedValue(prev, "1", pricing.FieldCost, "110")
	require.NoError(t, err)
	prev, err = pricing.SetStagedValue(prev, "2", pricing.FieldPriceA, "80")
	require.NoError(t, err)

	// store accepted item 1, rejected item 2
	fresh := []*pricing.PriceItem{item("1", 1, "110", "150", "140"), item("2", 1, "50", "75", "70"), item("3", 1, "1", "1", "1")}
	out := pricing.CarryStaged(fresh, prev, []string{"2", "ghost"})

	assert.False(t, out[0].IsModified())
	assert.Same(t, fresh[0], out[0])
	assert.True(t, out[1].IsModified())
	assert.True(t, out[1].NewPriceA.Equal(d("80")))
	assert.False(t, fresh[1].IsModified(), "fresh items are not mutated")
	assert.Same(t, fresh[2], out[2])
}
