package snapshot

import "sort"

// Ordered is an int-keyed snapshot with positional semantics: the id is
// the record's display position (e.g. a shop slot), so removal shifts the
// ids of all later records by -1 and insertion shifts them by +1, keeping
// the 0-based ordering contiguous. The key accessor exposes the id field
// inside the record, which is kept in sync with the map key.
type Ordered[R any] struct {
	*Snapshot[int, R]
	key func(*R) *int
}

// NewOrdered returns an empty ordered snapshot. key must return a pointer
// to the record's positional id field.
func NewOrdered[R any](key func(*R) *int) *Ordered[R] {
	return &Ordered[R]{Snapshot: New[int, R](), key: key}
}

// Set stores rec at id, forcing the record's own id field to match.
func (o *Ordered[R]) Set(id int, rec *R) bool {
	*o.key(rec) = id
	return o.Snapshot.Set(id, rec)
}

// Insert places rec at id, shifting the ids of existing records at or
// after id by +1.
func (o *Ordered[R]) Insert(id int, rec *R) {
	o.shift(id, +1)
	o.Set(id, rec)
}

// Remove deletes the record at id, shifting the ids of later records
// by -1.
func (o *Ordered[R]) Remove(id int) bool {
	if !o.Snapshot.Remove(id) {
		return false
	}
	o.shift(id+1, -1)
	return true
}

// Clone returns an independent ordered snapshot.
func (o *Ordered[R]) Clone(clone func(*R) *R) *Ordered[R] {
	return &Ordered[R]{Snapshot: o.Snapshot.Clone(clone), key: o.key}
}

// shift rebuilds the snapshot with every id >= from moved by by. The maps
// are rebuilt fresh rather than mutated during iteration.
func (o *Ordered[R]) shift(from, by int) {
	rebuilt := New[int, R]()
	ids := o.IDs()
	sort.Ints(ids)
	for _, id := range ids {
		rec := o.recs[id]
		if id >= from {
			id += by
		}
		*o.key(rec) = id
		rebuilt.Set(id, rec)
	}
	o.Snapshot = rebuilt
}
