/*
Package tabular reads and writes the delimited text tables used by the game's
structured asset files (shop data, model rigs, animation keyframes).

# Table

A table is a sequence of newline-separated rows, each row a sequence of
delimiter-separated cells:

	+--------+-------+--------+-------+--------+
	| cell   | delim | cell   | delim | cell   |  <- row 0
	+--------+-------+--------+-------+--------+
	| cell   | delim | cell   |                   <- row 1
	+--------+-------+--------+

The delimiter is fixed per table (tab for shop data, comma for model and
animation files). There is no escaping: a cell containing the delimiter
corrupts its row. This is a constraint inherited from the game's format,
not introduced here.

# Cells

Cells are stored as raw text. Typed accessors convert on demand and fail
loudly on malformed input; integers are plain ASCII numbers and booleans
are encoded as "0"/"1".

Decoding remembers the newline style (LF or CRLF) and whether the input
ended with a trailing newline, so that an unmodified table encodes back
byte-for-byte.
*/
package tabular
