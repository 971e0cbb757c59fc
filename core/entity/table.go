package entity

import "sort"

// Table is the page-lifetime mapping Key -> latest confirmed Record for one entity kind.
// It is not safe for concurrent use; Page guards it.
type Table struct {
	records map[Key]Record
}

func NewTable() *Table {
	return &Table{records: make(map[Key]Record)}
}

func (t *Table) Get(key Key) (Record, bool) {
	rec, ok := t.records[key]
	return rec, ok
}

func (t *Table) Set(key Key, rec Record) {
	t.records[key] = rec
}

// Delete removes key and reports whether it was present.
func (t *Table) Delete(key Key) bool {
	_, ok := t.records[key]
	delete(t.records, key)
	return ok
}

func (t *Table) Len() int { return len(t.records) }

// Keys returns the keys in lexical order.
func (t *Table) Keys() []Key {
	keys := make([]Key, 0, len(t.records))
	for k := range t.records {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
