// Package merge reconciles asset snapshots with a field-level three-way
// merge.
//
// The pristine snapshot — the asset state exactly as shipped by the
// unmodified game — is the reference point that distinguishes "the mod
// intentionally set this field" from "the mod just happened to record
// whatever the base game had here". Only fields where the incoming
// snapshot differs from pristine are copied into the current snapshot, so
// multiple mods can make disjoint edits to the same record without one
// mod's load reverting another's.
package merge

import (
	"github.com/cintagram/tbcpatch/schema"
	"github.com/cintagram/tbcpatch/snapshot"
)

// Attr is one mergeable attribute of record type R: a name plus
// comparison and copy closures. Attribute lists are built once per record
// type, not per merge call.
type Attr[R any] struct {
	Name  string
	Equal func(a, b *R) bool
	Copy  func(dst, src *R)
}

// FieldAttrs derives attributes from a schema's scalar fields. skip lists
// field names to leave out, typically the identity key.
func FieldAttrs[R any](s *schema.Schema[R], skip ...string) []Attr[R] {
	skipped := make(map[string]bool, len(skip))
	for _, name := range skip {
		skipped[name] = true
	}

	var attrs []Attr[R]
	for _, f := range s.Fields() {
		if skipped[f.Name] {
			continue
		}
		f := f
		attrs = append(attrs, Attr[R]{
			Name:  f.Name,
			Equal: func(a, b *R) bool { return f.Get(a).Equal(f.Get(b)) },
			Copy:  func(dst, src *R) { f.Set(dst, f.Get(src)) },
		})
	}
	return attrs
}

// SliceAttr builds an attribute over a repeated sub-record list. equal
// compares two elements; clone deep-copies one (nil for element types
// without nested lists).
func SliceAttr[R, E any](name string, get func(*R) *[]E, equal func(a, b *E) bool, clone func(*E) E) Attr[R] {
	cloneSlice := func(src []E) []E {
		if src == nil {
			return nil
		}
		out := make([]E, len(src))
		for i := range src {
			if clone != nil {
				out[i] = clone(&src[i])
			} else {
				out[i] = src[i]
			}
		}
		return out
	}

	return Attr[R]{
		Name: name,
		Equal: func(a, b *R) bool {
			as, bs := *get(a), *get(b)
			if len(as) != len(bs) {
				return false
			}
			for i := range as {
				if !equal(&as[i], &bs[i]) {
					return false
				}
			}
			return true
		},
		Copy: func(dst, src *R) { *get(dst) = cloneSlice(*get(src)) },
	}
}

// --------------------------------------------------------------------

// Snapshots merges incoming into current for one asset type, using
// pristine as the three-way reference. Records are keyed by the union of
// identities across all three snapshots:
//
//   - id absent from incoming: current is left untouched;
//   - id in incoming but not pristine (a record the mod introduced):
//     current is overwritten wholesale with a clone — there is no
//     original to diff against;
//   - id in all three: attributes where incoming differs from pristine
//     are copied into current; all others are left alone, even if some
//     earlier mod changed them.
//
// current is updated in place and returned.
func Snapshots[K comparable, R any](
	current, pristine, incoming *snapshot.Snapshot[K, R],
	attrs []Attr[R],
	clone func(*R) *R,
) *snapshot.Snapshot[K, R] {
	for _, id := range unionIDs(current, pristine, incoming) {
		inc, ok := incoming.Get(id)
		if !ok {
			continue
		}

		base, ok := pristine.Get(id)
		if !ok {
			current.Set(id, clone(inc))
			continue
		}

		cur, ok := current.Get(id)
		if !ok {
			// present in pristine and incoming but dropped from
			// current: restore only if the mod actually changed it
			if changed(inc, base, attrs) {
				current.Set(id, clone(inc))
			}
			continue
		}

		for _, a := range attrs {
			if !a.Equal(inc, base) {
				a.Copy(cur, inc)
			}
		}
	}
	return current
}

func changed[R any](inc, base *R, attrs []Attr[R]) bool {
	for _, a := range attrs {
		if !a.Equal(inc, base) {
			return true
		}
	}
	return false
}

func unionIDs[K comparable, R any](snaps ...*snapshot.Snapshot[K, R]) []K {
	seen := make(map[K]bool)
	var ids []K
	for _, s := range snaps {
		for _, id := range s.IDs() {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}
