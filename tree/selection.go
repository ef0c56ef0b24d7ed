package tree

import "sort"

// Selection is a set of node ids
type Selection map[string]struct{}

// NewSelection returns a selection holding ids
func NewSelection(ids ...string) Selection {
	s := make(Selection, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is selected
func (s Selection) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Toggle adds id when absent and removes it when present
func (s Selection) Toggle(id string) {
	if s.Has(id) {
		delete(s, id)
		return
	}
	s[id] = struct{}{}
}

// IDs returns the selected ids in sorted order
func (s Selection) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
