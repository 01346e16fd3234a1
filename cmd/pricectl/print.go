package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"pricedesk/internal/commit"
	"pricedesk/internal/dto"
	"pricedesk/internal/export"
	"pricedesk/internal/pricing"
)

func printSummary(out io.Writer, s pricing.Summary) {
	fmt.Fprintf(out, "items %d  selected %d  modified %d\n", s.TotalItems, s.Selected, s.Modified)
	fmt.Fprintf(out, "stock value %s -> %s (%s)\n",
		s.CurrentValue.StringFixed(2), s.NewValue.StringFixed(2), signed(s.ValueChange.StringFixed(2)))
}

func signed(v string) string {
	if len(v) > 0 && v[0] != '-' && v != "0.00" {
		return "+" + v
	}
	return v
}

func printResult(out io.Writer, res *commit.Result) {
	fmt.Fprintf(out, "committed %d, failed %d\n", len(res.Succeeded), len(res.Failed))
	for _, f := range res.Failed {
		fmt.Fprintf(out, "  ! %s: %s\n", f.ID, f.Detail)
	}
}

// printItems renders rows with a selection mark and a modified mark.
func printItems(out io.Writer, items []*pricing.PriceItem, selected func(string) bool) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tPART NO\tCATEGORY\tQTY\tCOST\tPRICE A\tPRICE B\tCHG %")
	for _, it := range items {
		mark := " "
		if selected(it.ID) {
			mark = "*"
		}
		if it.IsModified() {
			mark += "~"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			mark, it.PartNo, it.Category, it.Qty,
			pair(it, pricing.FieldCost), pair(it, pricing.FieldPriceA), pair(it, pricing.FieldPriceB),
			export.ChangePercent(it))
	}
	_ = tw.Flush()
}

// pair shows "old" or "old -> new" when the field is staged.
func pair(it *pricing.PriceItem, f pricing.Field) string {
	if !it.FieldModified(f) {
		return it.Committed(f).StringFixed(2)
	}
	return it.Committed(f).StringFixed(2) + " -> " + it.Staged(f).StringFixed(2)
}

func printHistory(out io.Writer, resp *dto.PriceHistoryListResponse) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tITEMS\tFIELD\tTYPE\tVALUE\tREASON\tBY")
	for _, h := range resp.Data {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			h.Date, h.ItemsUpdated, h.PriceField, h.UpdateType, h.Value.String(), h.Reason, h.UpdatedBy)
	}
	_ = tw.Flush()
	fmt.Fprintf(out, "page %d of %d (%d entries)\n", resp.Pagination.Page, resp.Pagination.TotalPages, resp.Pagination.Total)
}
