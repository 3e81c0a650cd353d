package tabular

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrOutOfBounds is returned when a cell or row is addressed beyond the
// table extent. Reads never return a default value instead.
var ErrOutOfBounds = errors.New("tabular: out of bounds")

// Cell is a single textual value with typed accessors.
type Cell struct {
	raw string
}

// String returns the raw cell text.
func (c *Cell) String() string { return c.raw }

// Int parses the cell as a plain ASCII integer.
func (c *Cell) Int() (int, error) {
	n, err := strconv.Atoi(c.raw)
	if err != nil {
		return 0, fmt.Errorf("tabular: cell %q is not an integer", c.raw)
	}
	return n, nil
}

// Bool parses the cell as a 0/1 flag.
func (c *Cell) Bool() (bool, error) {
	switch c.raw {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, fmt.Errorf("tabular: cell %q is not a boolean", c.raw)
}

// SetString replaces the cell text.
func (c *Cell) SetString(s string) { c.raw = s }

// SetInt stores n as plain ASCII.
func (c *Cell) SetInt(n int) { c.raw = strconv.Itoa(n) }

// SetBool stores b as "0" or "1".
func (c *Cell) SetBool(b bool) {
	if b {
		c.raw = "1"
	} else {
		c.raw = "0"
	}
}

// Row is an ordered sequence of cells. Identity is positional.
type Row []Cell

// Table is an ordered sequence of rows plus the delimiter they were split
// by. Rows are addressable by integer index and appending preserves order;
// the table never re-sorts.
type Table struct {
	rows  []Row
	delim rune

	crlf       bool
	trailingNL bool
}

// New returns an empty table using the given delimiter.
func New(delim rune) *Table {
	return &Table{delim: delim, trailingNL: true}
}

// Delim returns the table delimiter.
func (t *Table) Delim() rune { return t.delim }

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return len(t.rows) }

// RowLen returns the number of cells in row i, or 0 if the row does
// not exist.
func (t *Table) RowLen(i int) int {
	if i < 0 || i >= len(t.rows) {
		return 0
	}
	return len(t.rows[i])
}

// Get returns the cell at (row, col). It fails with ErrOutOfBounds when
// the address is beyond the table extent; use Ensure for the explicit
// create-if-absent path.
func (t *Table) Get(row, col int) (*Cell, error) {
	if row < 0 || row >= len(t.rows) {
		return nil, fmt.Errorf("%w: row %d of %d", ErrOutOfBounds, row, len(t.rows))
	}
	if col < 0 || col >= len(t.rows[row]) {
		return nil, fmt.Errorf("%w: column %d of %d in row %d", ErrOutOfBounds, col, len(t.rows[row]), row)
	}
	return &t.rows[row][col], nil
}

// Ensure returns the cell at (row, col), growing the table with empty
// rows and cells as needed.
func (t *Table) Ensure(row, col int) *Cell {
	for row >= len(t.rows) {
		t.rows = append(t.rows, Row{})
	}
	for col >= len(t.rows[row]) {
		t.rows[row] = append(t.rows[row], Cell{})
	}
	return &t.rows[row][col]
}

// Set stores value at (row, col), creating the cell if absent.
func (t *Table) Set(row, col int, value string) {
	t.Ensure(row, col).SetString(value)
}

// AppendRow appends a row built from values.
func (t *Table) AppendRow(values ...string) {
	row := make(Row, len(values))
	for i, v := range values {
		row[i].SetString(v)
	}
	t.rows = append(t.rows, row)
}
