package loader

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// rowBatch is the number of rows read from a parquet file at a time.
const rowBatch = 256

// ReadParquet reads a flat parquet file. Integer and floating point leaves
// become numeric columns, everything else is kept as text.
func ReadParquet(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	name := filepath.Base(path)
	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	reader := parquet.NewReader(pf)
	defer func() { _ = reader.Close() }()

	sch := reader.Schema()
	paths := sch.Columns()
	cols := make([]*Column, len(paths))
	for i, p := range paths {
		leaf, ok := sch.Lookup(p...)
		if !ok {
			return nil, fmt.Errorf("%s: cannot resolve column %s", name, strings.Join(p, "."))
		}
		if leaf.MaxRepetitionLevel > 0 {
			return nil, fmt.Errorf("%s: column %s is repeated, only flat files are supported", name, strings.Join(p, "."))
		}
		cols[i] = &Column{Name: strings.Join(p, "."), Numeric: isNumericKind(leaf.Node.Type().Kind())}
	}

	rows := make([]parquet.Row, rowBatch)
	for {
		n, err := reader.ReadRows(rows)
		for _, row := range rows[:n] {
			appendRow(cols, row)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: failed to read rows: %w", name, err)
		}
	}

	t := &Table{Name: name, index: make(map[string]int, len(cols))}
	for _, c := range cols {
		t.appendColumn(c)
	}
	return t, nil
}

func isNumericKind(k parquet.Kind) bool {
	switch k {
	case parquet.Int32, parquet.Int64, parquet.Float, parquet.Double:
		return true
	}
	return false
}

// appendRow adds one cell per column. Each leaf of a flat schema has exactly one value per row.
func appendRow(cols []*Column, row parquet.Row) {
	for i, c := range cols {
		raw, f := "", math.NaN()
		if i < len(row) {
			raw, f = cellValue(row[i])
		}
		c.values = append(c.values, raw)
		if c.Numeric {
			c.floats = append(c.floats, f)
		}
	}
}

func cellValue(v parquet.Value) (string, float64) {
	if v.IsNull() {
		return "", math.NaN()
	}
	switch v.Kind() {
	case parquet.Int32:
		return strconv.FormatInt(int64(v.Int32()), 10), float64(v.Int32())
	case parquet.Int64:
		return strconv.FormatInt(v.Int64(), 10), float64(v.Int64())
	case parquet.Float:
		return strconv.FormatFloat(float64(v.Float()), 'g', -1, 32), float64(v.Float())
	case parquet.Double:
		return strconv.FormatFloat(v.Double(), 'g', -1, 64), v.Double()
	case parquet.Boolean:
		return strconv.FormatBool(v.Boolean()), math.NaN()
	default:
		return string(v.ByteArray()), math.NaN()
	}
}
