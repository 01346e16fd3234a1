package pricing

// Reset discards every staged edit and clears sel when it is non-nil.
func Reset(items []*PriceItem, sel *Selection) []*PriceItem {
	out := make([]*PriceItem, len(items))
	for i, it := range items {
		out[i] = it.Unmodified()
	}
	if sel != nil {
		sel.Clear()
	}
	return out
}
