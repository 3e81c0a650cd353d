package tabular

import "strings"

// Decode splits text into rows and cells by delim. The newline style and
// the presence of a trailing newline are retained so that Encode
// round-trips unmodified input byte-for-byte.
func Decode(text string, delim rune) *Table {
	t := &Table{delim: delim}

	lines := strings.Split(text, "\n")
	if n := len(lines); n > 1 && lines[n-1] == "" {
		t.trailingNL = true
		lines = lines[:n-1]
	}

	t.rows = make([]Row, 0, len(lines))
	for _, line := range lines {
		if s := strings.TrimSuffix(line, "\r"); s != line {
			t.crlf = true
			line = s
		}
		cells := strings.Split(line, string(delim))
		row := make(Row, len(cells))
		for i, c := range cells {
			row[i].SetString(c)
		}
		t.rows = append(t.rows, row)
	}
	return t
}

// Encode serializes the table back to delimited text.
func (t *Table) Encode() string {
	nl := "\n"
	if t.crlf {
		nl = "\r\n"
	}

	var sb strings.Builder
	for i, row := range t.rows {
		if i > 0 {
			sb.WriteString(nl)
		}
		for j := range row {
			if j > 0 {
				sb.WriteRune(t.delim)
			}
			sb.WriteString(row[j].raw)
		}
	}
	if t.trailingNL {
		sb.WriteString(nl)
	}
	return sb.String()
}
