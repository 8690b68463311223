package sheets

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Value is one CSV cell. Valid is false for missing cells and for empty
// fields, which spreadsheet exports use for blank cells.
type Value struct {
	String string
	Valid  bool
}

// Str returns a valid Value holding s.
func Str(s string) Value { return Value{String: s, Valid: true} }

// Null is the missing-cell Value.
var Null = Value{}

// Table is a parsed CSV document: an ordered header and rows of cells.
// Rows always have exactly len(Columns) cells. Tables handed out by the
// cache are shared and must be treated as read-only.
type Table struct {
	Columns []string
	Rows    [][]Value
}

// NewTable builds a Table from a header and rows, padding short rows with
// nulls. It is mostly useful in tests and for non-CSV sources.
func NewTable(columns []string, rows [][]Value) *Table {
	t := &Table{Columns: columns, Rows: make([][]Value, 0, len(rows))}
	for _, r := range rows {
		row := make([]Value, len(columns))
		copy(row, r)
		t.Rows = append(t.Rows, row)
	}
	return t
}

// SchemaError reports a column that a consumer expected but the table lacks.
type SchemaError struct {
	Column    string
	Available []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("sheets: column %q not found (have %s)", e.Column, strings.Join(quoteAll(e.Available), ", "))
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strconv.Quote(s)
	}
	return out
}

// Index returns the position of the column named name, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns every cell of the named column in row order.
// A missing column yields a *SchemaError.
func (t *Table) Column(name string) ([]Value, error) {
	idx := t.Index(name)
	if idx < 0 {
		return nil, &SchemaError{Column: name, Available: t.Columns}
	}
	out := make([]Value, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

var errEmptyCSV = errors.New("no columns to parse")

// ParseCSV reads a CSV document whose first record is the header.
//
// Header handling follows common spreadsheet-export conventions: a UTF-8
// BOM is stripped, blank header cells become "Unnamed: <index>" and repeated
// names get ".1", ".2" suffixes. Data rows shorter than the header are
// padded with nulls; longer rows are an error.
func ParseCSV(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && string(bom) == "\xef\xbb\xbf" {
		_, _ = br.Discard(3)
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errEmptyCSV
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	t := &Table{Columns: normalizeHeader(header)}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(t.Rows)+1, err)
		}
		if len(rec) > len(t.Columns) {
			return nil, fmt.Errorf("row %d: expected %d fields, saw %d", len(t.Rows)+1, len(t.Columns), len(rec))
		}
		row := make([]Value, len(t.Columns))
		for i, field := range rec {
			if field != "" {
				row[i] = Str(field)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// normalizeHeader names blank columns "Unnamed: <i>" and suffixes repeats
// with ".1", ".2", ... skipping any suffixed name already taken.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	taken := make(map[string]bool, len(header))
	counts := make(map[string]int, len(header))
	for i, name := range header {
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if taken[name] {
			base, n := name, counts[name]
			for {
				n++
				name = base + "." + strconv.Itoa(n)
				if !taken[name] {
					break
				}
			}
			counts[base] = n
		}
		taken[name] = true
		out[i] = name
	}
	return out
}
