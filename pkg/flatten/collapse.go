package flatten

import "strings"

// Collapsed holds one string per column key of a record.
type Collapsed struct {
	keys  []string
	cells map[string]string
}

// Collapse joins the values of every key of rec with sep, in encounter order.
// An empty sep falls back to "|".
func Collapse(rec *Record, sep string) *Collapsed {
	if sep == "" {
		sep = DefaultDuplicateSeparator
	}
	c := &Collapsed{
		keys:  rec.Keys(),
		cells: make(map[string]string, rec.Len()),
	}
	for _, key := range c.keys {
		c.cells[key] = strings.Join(rec.Values(key), sep)
	}
	return c
}

// Get returns the cell for key and whether the record has it.
func (c *Collapsed) Get(key string) (string, bool) {
	v, ok := c.cells[key]
	return v, ok
}

// Keys returns the record's keys in first-insertion order.
func (c *Collapsed) Keys() []string {
	return c.keys
}
