package flatten

// Record is an ordered multimap from column key to values. Keys iterate in
// first-insertion order and each key's values keep their encounter order.
type Record struct {
	keys   []string
	values map[string][]string
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string][]string)}
}

// Append adds value under key, registering key on first use.
func (r *Record) Append(key, value string) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = append(r.values[key], value)
}

// Keys returns the keys in first-insertion order.
func (r *Record) Keys() []string {
	return r.keys
}

// Values returns the values stored under key, or nil.
func (r *Record) Values(key string) []string {
	return r.values[key]
}

// Has reports whether key holds at least one value.
func (r *Record) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Len is the number of distinct keys.
func (r *Record) Len() int {
	return len(r.keys)
}

// ValueCount is the number of values over all keys.
func (r *Record) ValueCount() int {
	n := 0
	for _, v := range r.values {
		n += len(v)
	}
	return n
}
