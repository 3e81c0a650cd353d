// Package schema declaratively binds record types to cells of a tabular.Table.
//
// A Schema is an ordered list of sections that are read and written at a
// moving row cursor: a fixed-size header of scalar fields, repeated blocks
// of sub-records prefixed by a count field, and inline fixed sub-records.
// Sections chain, so a block's successor starts wherever the block ended,
// without hardcoded offsets. Count fields are always re-derived from the
// live list length before encoding; a stale on-disk count is never trusted.
package schema

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/cintagram/tbcpatch/tabular"
)

// Kind enumerates the cell types a field can bind.
type Kind uint8

// Supported field kinds.
const (
	Int Kind = iota
	Bool
	String
)

// Value is a typed scalar moving between a record field and a cell.
type Value struct {
	kind Kind
	num  int
	flag bool
	str  string
}

// IntValue wraps an integer.
func IntValue(n int) Value { return Value{kind: Int, num: n} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: Bool, flag: b} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: String, str: s} }

// Kind returns the value kind.
func (v Value) Kind() Kind { return v.kind }

// Int returns the wrapped integer.
func (v Value) Int() int { return v.num }

// Bool returns the wrapped boolean.
func (v Value) Bool() bool { return v.flag }

// Str returns the wrapped string.
func (v Value) Str() string { return v.str }

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool { return v == o }

// Text returns the cell encoding of the value.
func (v Value) Text() string {
	switch v.kind {
	case Int:
		return strconv.Itoa(v.num)
	case Bool:
		if v.flag {
			return "1"
		}
		return "0"
	}
	return v.str
}

func (v Value) store(c *tabular.Cell) {
	switch v.kind {
	case Int:
		c.SetInt(v.num)
	case Bool:
		c.SetBool(v.flag)
	default:
		c.SetString(v.str)
	}
}

func parseCell(k Kind, c *tabular.Cell) (Value, error) {
	switch k {
	case Int:
		n, err := c.Int()
		if err != nil {
			return Value{}, err
		}
		return IntValue(n), nil
	case Bool:
		b, err := c.Bool()
		if err != nil {
			return Value{}, err
		}
		return BoolValue(b), nil
	}
	return StringValue(c.String()), nil
}

// --------------------------------------------------------------------

// A MalformedError indicates that a table is missing rows a schema
// requires. It is non-recoverable for the asset type being decoded.
type MalformedError struct {
	Schema   string // schema name
	Expected int    // rows the schema needed
	Actual   int    // rows the table has
	cause    error
}

// Error implements the error interface.
func (e *MalformedError) Error() string {
	return fmt.Sprintf("schema: malformed %s table, need %d rows but have %d: %v", e.Schema, e.Expected, e.Actual, e.cause)
}

// Unwrap exposes the underlying cell error.
func (e *MalformedError) Unwrap() error { return e.cause }

// IsMalformed reports whether err is a MalformedError.
func IsMalformed(err error) bool {
	var me *MalformedError
	return errors.As(err, &me)
}

func malformed(name string, t *tabular.Table, row int, cause error) error {
	return &MalformedError{Schema: name, Expected: row + 1, Actual: t.NumRows(), cause: cause}
}

// --------------------------------------------------------------------

// Field binds one scalar attribute of record type R to a cell at a fixed
// column and a row offset from the cursor. Get and Set are plain closures;
// no reflection is involved.
type Field[R any] struct {
	Name string
	Kind Kind
	Col  int
	Row  int // row offset from the cursor, 0 for single-row records
	Opt  bool
	Get  func(*R) Value
	Set  func(*R, Value)
}

// AtRow returns a copy of the field anchored at the given row offset.
// Used by metadata blocks that store one field per row.
func (f Field[R]) AtRow(row int) Field[R] {
	f.Row = row
	return f
}

// Optional returns a copy of the field that tolerates a missing cell.
// An absent cell leaves the record field at its zero value on read, and
// an empty value is not written back, so a table without the trailing
// column round-trips unchanged. Used for trailing name columns that the
// game files carry inconsistently.
func (f Field[R]) Optional() Field[R] {
	f.Opt = true
	return f
}

// IntField describes an integer attribute at column col.
func IntField[R any](name string, col int, get func(*R) int, set func(*R, int)) Field[R] {
	return Field[R]{
		Name: name,
		Kind: Int,
		Col:  col,
		Get:  func(r *R) Value { return IntValue(get(r)) },
		Set:  func(r *R, v Value) { set(r, v.Int()) },
	}
}

// BoolField describes a 0/1 flag attribute at column col.
func BoolField[R any](name string, col int, get func(*R) bool, set func(*R, bool)) Field[R] {
	return Field[R]{
		Name: name,
		Kind: Bool,
		Col:  col,
		Get:  func(r *R) Value { return BoolValue(get(r)) },
		Set:  func(r *R, v Value) { set(r, v.Bool()) },
	}
}

// StringField describes a string attribute at column col.
func StringField[R any](name string, col int, get func(*R) string, set func(*R, string)) Field[R] {
	return Field[R]{
		Name: name,
		Kind: String,
		Col:  col,
		Get:  func(r *R) Value { return StringValue(get(r)) },
		Set:  func(r *R, v Value) { set(r, v.Str()) },
	}
}

// --------------------------------------------------------------------

// Schema describes how record type R maps onto table rows. Schemas are
// statically declared, typically once per record type at package init.
type Schema[R any] struct {
	name     string
	fresh    func() *R
	fields   []Field[R]
	sections []section[R]
}

type section[R any] interface {
	// start is the cursor at the beginning of the record, cur the
	// chained cursor at the beginning of this section. Both return
	// the cursor right after the section.
	read(t *tabular.Table, rec *R, start, cur int) (int, error)
	write(t *tabular.Table, rec *R, start, cur int) (int, error)
}

// New declares a schema for record type R.
func New[R any](name string, fresh func() *R) *Schema[R] {
	return &Schema[R]{name: name, fresh: fresh}
}

// Name returns the schema name.
func (s *Schema[R]) Name() string { return s.name }

// Fields returns the scalar fields declared across all header sections,
// in declaration order. The merge engine builds its attribute list from
// this, once per record type.
func (s *Schema[R]) Fields() []Field[R] { return s.fields }

// Header appends a fixed-size section of rows scalar rows holding the
// given fields. Field row offsets are relative to the section start.
func (s *Schema[R]) Header(rows int, fields ...Field[R]) *Schema[R] {
	s.fields = append(s.fields, fields...)
	s.sections = append(s.sections, &headerSection[R]{rows: rows, fields: fields})
	return s
}

type headerSection[R any] struct {
	rows   int
	fields []Field[R]
}

func (h *headerSection[R]) read(t *tabular.Table, rec *R, _, cur int) (int, error) {
	for _, f := range h.fields {
		cell, err := t.Get(cur+f.Row, f.Col)
		if err != nil {
			if f.Opt && errors.Is(err, tabular.ErrOutOfBounds) {
				continue
			}
			return cur, err
		}
		v, err := parseCell(f.Kind, cell)
		if err != nil {
			return cur, fmt.Errorf("schema: field %s: %w", f.Name, err)
		}
		f.Set(rec, v)
	}
	return cur + h.rows, nil
}

func (h *headerSection[R]) write(t *tabular.Table, rec *R, _, cur int) (int, error) {
	for _, f := range h.fields {
		v := f.Get(rec)
		if f.Opt && v.Text() == "" {
			continue
		}
		v.store(t.Ensure(cur+f.Row, f.Col))
	}
	return cur + h.rows, nil
}

// --------------------------------------------------------------------

// Read materializes a fresh record from the table at cursor and returns
// it together with the cursor of the row right after the record. Missing
// rows fail with a MalformedError.
func Read[R any](s *Schema[R], t *tabular.Table, cursor int) (*R, int, error) {
	rec := s.fresh()
	next, err := ReadInto(s, rec, t, cursor)
	if err != nil {
		return nil, cursor, err
	}
	return rec, next, nil
}

// ReadInto is Read into a caller-allocated record.
func ReadInto[R any](s *Schema[R], rec *R, t *tabular.Table, cursor int) (int, error) {
	cur := cursor
	var err error
	for _, sec := range s.sections {
		if cur, err = sec.read(t, rec, cursor, cur); err != nil {
			if errors.Is(err, tabular.ErrOutOfBounds) && !IsMalformed(err) {
				return cursor, malformed(s.name, t, cur, err)
			}
			return cursor, err
		}
	}
	return cur, nil
}

// Write encodes the record into the table at cursor, creating rows and
// cells as needed, and returns the cursor of the row right after the
// record. Count fields are recomputed from live list lengths.
func Write[R any](s *Schema[R], rec *R, t *tabular.Table, cursor int) (int, error) {
	cur := cursor
	var err error
	for _, sec := range s.sections {
		if cur, err = sec.write(t, rec, cursor, cur); err != nil {
			return cursor, err
		}
	}
	return cur, nil
}
