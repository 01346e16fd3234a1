// Package export renders the visible price rows as CSV or XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"pricedesk/internal/pricing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Format selects the output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv" or "xlsx".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatXLSX:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Header is the column order of every export.
var Header = []string{
	"Part No", "Description", "Category", "Qty",
	"Cost", "New Cost", "Price A", "New A", "Price B", "New B", "Change %",
}

const sheetName = "Prices"

var hundred = decimal.NewFromInt(100)

// ChangePercent is the staged change of cost in percent with one decimal,
// or "-" when the committed cost is zero.
func ChangePercent(it *pricing.PriceItem) string {
	if !it.Cost.IsPositive() {
		return "-"
	}
	return it.NewCost.Sub(it.Cost).Div(it.Cost).Mul(hundred).StringFixed(1)
}

func record(it *pricing.PriceItem) []string {
	return []string{
		it.PartNo,
		it.Description,
		it.Category,
		strconv.Itoa(it.Qty),
		it.Cost.StringFixed(2),
		it.NewCost.StringFixed(2),
		it.PriceA.StringFixed(2),
		it.NewPriceA.StringFixed(2),
		it.PriceB.StringFixed(2),
		it.NewPriceB.StringFixed(2),
		ChangePercent(it),
	}
}

// Write encodes items in the given format.
func Write(w io.Writer, format Format, items []*pricing.PriceItem) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, items)
	case FormatXLSX:
		return WriteXLSX(w, items)
	}
	return fmt.Errorf("unknown export format %q", format)
}

// WriteCSV writes a header row plus one row per item.
func WriteCSV(w io.Writer, items []*pricing.PriceItem) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, it := range items {
		if err := cw.Write(record(it)); err != nil {
			return fmt.Errorf("export %s: %w", it.PartNo, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a single-sheet workbook. Money cells are numeric so the
// sheet can be summed; Change % stays text because of the "-" marker.
func WriteXLSX(w io.Writer, items []*pricing.PriceItem) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 2}) // 0.00
	if err != nil {
		return err
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", "K1", bold); err != nil {
		return err
	}

	for i, it := range items {
		row := []interface{}{
			it.PartNo, it.Description, it.Category, it.Qty,
			it.Cost.InexactFloat64(), it.NewCost.InexactFloat64(),
			it.PriceA.InexactFloat64(), it.NewPriceA.InexactFloat64(),
			it.PriceB.InexactFloat64(), it.NewPriceB.InexactFloat64(),
			ChangePercent(it),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("export %s: %w", it.PartNo, err)
		}
	}
	if len(items) > 0 {
		last := len(items) + 1
		if err := f.SetCellStyle(sheetName, "E2", "J"+strconv.Itoa(last), money); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheetName, "A", "C", 20); err != nil {
		return err
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}
