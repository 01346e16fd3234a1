package pricing

import (
	"sort"
	"strings"
)

// CategoryAll disables the category filter.
const CategoryAll = "all"

// Visible returns the items matching search (case-insensitive substring of part
// number or description) and category (exact, or CategoryAll / empty for any).
func Visible(items []*PriceItem, search, category string) []*PriceItem {
	needle := strings.ToLower(strings.TrimSpace(search))
	var out []*PriceItem
	for _, it := range items {
		if needle != "" &&
			!strings.Contains(strings.ToLower(it.PartNo), needle) &&
			!strings.Contains(strings.ToLower(it.Description), needle) {
			continue
		}
		if category != "" && category != CategoryAll && it.Category != category {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Page slices a view for display. page is 1-based; out of range pages are empty.
func Page(items []*PriceItem, page, perPage int) []*PriceItem {
	if page < 1 || perPage < 1 {
		return nil
	}
	start := (page - 1) * perPage
	if start >= len(items) {
		return nil
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// TotalPages is ceil(n / perPage).
func TotalPages(n, perPage int) int {
	if perPage < 1 {
		return 0
	}
	return (n + perPage - 1) / perPage
}

// Categories returns the distinct non-empty categories present, sorted.
func Categories(items []*PriceItem) []string {
	seen := make(map[string]struct{})
	for _, it := range items {
		if it.Category != "" {
			seen[it.Category] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
