package pricing

import "sort"

// Selection is the set of item IDs the operator marked for the next bulk action.
// The zero value is an empty selection.
type Selection struct {
	ids map[string]struct{}
}

func NewSelection(ids ...string) *Selection {
	s := &Selection{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// SelectAll replaces the selection with the visible IDs. Rows hidden by the
// active filter are never selected implicitly.
func (s *Selection) SelectAll(visibleIDs []string) {
	s.ids = make(map[string]struct{}, len(visibleIDs))
	for _, id := range visibleIDs {
		s.ids[id] = struct{}{}
	}
}

// Toggle adds or removes one identifier.
func (s *Selection) Toggle(id string, included bool) {
	if included {
		if s.ids == nil {
			s.ids = make(map[string]struct{})
		}
		s.ids[id] = struct{}{}
		return
	}
	delete(s.ids, id)
}

func (s *Selection) Clear() {
	s.ids = make(map[string]struct{})
}

// Prune drops every selected ID that is not in loadedIDs and reports how many
// were removed.
func (s *Selection) Prune(loadedIDs []string) int {
	keep := make(map[string]struct{}, len(loadedIDs))
	for _, id := range loadedIDs {
		keep[id] = struct{}{}
	}
	removed := 0
	for id := range s.ids {
		if _, ok := keep[id]; !ok {
			delete(s.ids, id)
			removed++
		}
	}
	return removed
}

func (s *Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *Selection) Len() int { return len(s.ids) }

// IDs returns the selected identifiers sorted.
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// AllSelected reports whether every visible ID is selected. An empty view is
// never "all selected".
func (s *Selection) AllSelected(visibleIDs []string) bool {
	if len(visibleIDs) == 0 {
		return false
	}
	for _, id := range visibleIDs {
		if !s.Has(id) {
			return false
		}
	}
	return true
}
