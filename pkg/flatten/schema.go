package flatten

import "sort"

// Schema is the set of column keys observed during a run.
type Schema struct {
	seen  map[string]struct{}
	order []string
}

// NewSchema creates an empty schema.
func NewSchema() *Schema {
	return &Schema{seen: make(map[string]struct{})}
}

// Observe adds key and reports whether it was new.
func (s *Schema) Observe(key string) bool {
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	s.order = append(s.order, key)
	return true
}

// Merge observes every key of rec and returns how many were new.
func (s *Schema) Merge(rec *Record) int {
	added := 0
	for _, key := range rec.Keys() {
		if s.Observe(key) {
			added++
		}
	}
	return added
}

// Contains reports whether key has been observed.
func (s *Schema) Contains(key string) bool {
	_, ok := s.seen[key]
	return ok
}

// Len is the number of observed keys.
func (s *Schema) Len() int {
	return len(s.order)
}

// Discovered returns the keys in first-seen order.
func (s *Schema) Discovered() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Columns returns the keys sorted lexicographically. This is the wide header.
func (s *Schema) Columns() []string {
	out := s.Discovered()
	sort.Strings(out)
	return out
}
