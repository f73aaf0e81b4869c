// Package loader reads the tabular survey exports into column-oriented tables.
package loader

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMissingColumn is returned when a required column is absent from a table.
var ErrMissingColumn = errors.New("missing column")

// naTokens are the cell values treated as missing, on top of the empty string.
var naTokens = map[string]struct{}{
	"#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {}, "-NaN": {}, "-nan": {},
	"1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {}, "NA": {}, "NULL": {}, "NaN": {},
	"None": {}, "n/a": {}, "nan": {}, "null": {},
}

// IsMissing reports whether a raw cell value denotes a missing value.
func IsMissing(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	_, ok := naTokens[s]
	return ok
}

// Column is one named column of a table. Numeric columns keep a parsed
// float per row, with NaN for missing cells.
type Column struct {
	Name    string
	Numeric bool
	values  []string
	floats  []float64
}

// Len returns the number of rows in the column.
func (c *Column) Len() int {
	return len(c.values)
}

// String returns the raw cell at row i, or "" when the cell is missing.
func (c *Column) String(i int) string {
	if IsMissing(c.values[i]) {
		return ""
	}
	return strings.TrimSpace(c.values[i])
}

// Float returns the value at row i. The bool is false for missing,
// non-finite and non-numeric cells.
func (c *Column) Float(i int) (float64, bool) {
	if !c.Numeric {
		return 0, false
	}
	v := c.floats[i]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Table is an ordered set of equally long columns.
type Table struct {
	Name    string
	columns []*Column
	index   map[string]int
	rows    int
}

// NewTable builds a table from a header and string records. Empty header
// names become "Unnamed: i" and repeated names get a ".n" suffix. Short
// records are padded with missing cells.
func NewTable(name string, header []string, records [][]string) (*Table, error) {
	t := &Table{Name: name, index: make(map[string]int, len(header)), rows: len(records)}
	seen := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			h = fmt.Sprintf("%s.%d", h, n+1)
		} else {
			seen[h] = 0
		}
		t.index[h] = i
		t.columns = append(t.columns, &Column{Name: h, values: make([]string, len(records))})
	}

	for r, rec := range records {
		if len(rec) > len(header) {
			return nil, fmt.Errorf("%s: row %d has %d fields, header has %d", name, r+1, len(rec), len(header))
		}
		for c := range t.columns {
			if c < len(rec) {
				t.columns[c].values[r] = rec[c]
			}
		}
	}

	for _, col := range t.columns {
		inferNumeric(col)
	}
	return t, nil
}

// inferNumeric marks a column numeric when every present cell parses as a float.
// A column with no present cells is numeric too.
func inferNumeric(col *Column) {
	floats := make([]float64, len(col.values))
	for i, raw := range col.values {
		if IsMissing(raw) {
			floats[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return
		}
		floats[i] = v
	}
	col.Numeric = true
	col.floats = floats
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return t.rows
}

// Names returns the column names in file order.
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Columns returns the columns in file order.
func (t *Table) Columns() []*Column {
	return t.columns
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// Has reports whether the table carries the named column.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Require checks that all named columns exist.
func (t *Table) Require(names ...string) error {
	var missing []string
	for _, n := range names {
		if !t.Has(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: %w: %s", t.Name, ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

// appendColumn adds a fully built column, used by readers that know the column types.
func (t *Table) appendColumn(col *Column) {
	t.index[col.Name] = len(t.columns)
	t.columns = append(t.columns, col)
	t.rows = len(col.values)
}
