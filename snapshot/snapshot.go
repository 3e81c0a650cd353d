// Package snapshot holds decoded asset records keyed by a stable identity.
//
// A snapshot represents one version of one asset type: the pristine game
// data, the current working state accumulating mod edits, or a single
// mod's recorded state. Insertion order is preserved so that asset types
// without a semantic identity still re-encode stably.
package snapshot

// Snapshot maps a stable identity key to records of type R.
type Snapshot[K comparable, R any] struct {
	recs  map[K]*R
	order []K
}

// New returns an empty snapshot.
func New[K comparable, R any]() *Snapshot[K, R] {
	return &Snapshot[K, R]{recs: make(map[K]*R)}
}

// Get returns the record stored under id.
func (s *Snapshot[K, R]) Get(id K) (*R, bool) {
	rec, ok := s.recs[id]
	return rec, ok
}

// Set stores rec under id and reports whether an existing record was
// replaced. Callers building a snapshot from unvalidated data use the
// return value to record identity conflicts.
func (s *Snapshot[K, R]) Set(id K, rec *R) bool {
	_, replaced := s.recs[id]
	if !replaced {
		s.order = append(s.order, id)
	}
	s.recs[id] = rec
	return replaced
}

// Remove deletes the record stored under id.
func (s *Snapshot[K, R]) Remove(id K) bool {
	if _, ok := s.recs[id]; !ok {
		return false
	}
	delete(s.recs, id)
	for i, k := range s.order {
		if k == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// IDs returns all identity keys in insertion order.
func (s *Snapshot[K, R]) IDs() []K {
	ids := make([]K, len(s.order))
	copy(ids, s.order)
	return ids
}

// Len returns the number of records.
func (s *Snapshot[K, R]) Len() int { return len(s.recs) }

// Clone returns an independent snapshot, deep-copying every record
// through clone. Merge runs never share mutable record state.
func (s *Snapshot[K, R]) Clone(clone func(*R) *R) *Snapshot[K, R] {
	out := New[K, R]()
	for _, id := range s.order {
		out.Set(id, clone(s.recs[id]))
	}
	return out
}
