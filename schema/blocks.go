package schema

import (
	"errors"
	"fmt"

	"github.com/cintagram/tbcpatch/tabular"
)

// Repeat describes a variable-length run of E sub-records inside R,
// prefixed by a count field. The count cell either sits at a fixed offset
// inside the record header (FromStart) or at the head of the block itself.
// Elements start BaseRow rows after the block cursor, so a block with its
// own count row typically uses BaseRow = CountRow + 1. A zero-length list
// still reserves the count row, holding the value 0.
type Repeat[R, E any] struct {
	Name     string
	CountCol int
	CountRow int
	// FromStart addresses the count cell relative to the record start
	// instead of the block cursor, for counts stored in the header.
	FromStart bool
	// BaseRow is the number of rows between the block cursor and the
	// first element.
	BaseRow int
	Elem    *Schema[E]

	Len    func(*R) int
	At     func(*R, int) *E
	Append func(*R) *E
	Clear  func(*R)
}

// AddRepeat appends a repeated block section to the schema.
func AddRepeat[R, E any](s *Schema[R], b Repeat[R, E]) *Schema[R] {
	s.sections = append(s.sections, &b)
	return s
}

func (b *Repeat[R, E]) countCell(t *tabular.Table, start, cur int) (*tabular.Cell, error) {
	if b.FromStart {
		return t.Get(start+b.CountRow, b.CountCol)
	}
	return t.Get(cur+b.CountRow, b.CountCol)
}

func (b *Repeat[R, E]) read(t *tabular.Table, rec *R, start, cur int) (int, error) {
	cell, err := b.countCell(t, start, cur)
	if err != nil {
		return cur, err
	}
	count, err := cell.Int()
	if err != nil {
		return cur, fmt.Errorf("schema: block %s count: %w", b.Name, err)
	}
	if count < 0 {
		return cur, fmt.Errorf("schema: block %s has negative count %d", b.Name, count)
	}

	b.Clear(rec)
	cur += b.BaseRow
	for i := 0; i < count; i++ {
		if cur, err = ReadInto(b.Elem, b.Append(rec), t, cur); err != nil {
			var me *MalformedError
			if errors.As(err, &me) {
				me.Schema = b.Name + "." + me.Schema
			}
			return cur, err
		}
	}
	return cur, nil
}

func (b *Repeat[R, E]) write(t *tabular.Table, rec *R, start, cur int) (int, error) {
	// the count is always re-derived from the in-memory list
	count := b.Len(rec)
	if b.FromStart {
		t.Ensure(start+b.CountRow, b.CountCol).SetInt(count)
	} else {
		t.Ensure(cur+b.CountRow, b.CountCol).SetInt(count)
	}

	cur += b.BaseRow
	var err error
	for i := 0; i < count; i++ {
		if cur, err = Write(b.Elem, b.At(rec, i), t, cur); err != nil {
			return cur, err
		}
	}
	return cur, nil
}

// --------------------------------------------------------------------

// Inline embeds a fixed sub-record E at the current cursor, advancing by
// however many rows the element schema occupies.
type Inline[R, E any] struct {
	Name string
	Elem *Schema[E]
	Get  func(*R) *E
}

// AddInline appends an inline sub-record section to the schema.
func AddInline[R, E any](s *Schema[R], i Inline[R, E]) *Schema[R] {
	s.sections = append(s.sections, &i)
	return s
}

func (i *Inline[R, E]) read(t *tabular.Table, rec *R, _, cur int) (int, error) {
	return ReadInto(i.Elem, i.Get(rec), t, cur)
}

func (i *Inline[R, E]) write(t *tabular.Table, rec *R, _, cur int) (int, error) {
	return Write(i.Elem, i.Get(rec), t, cur)
}
