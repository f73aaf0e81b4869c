package store

import (
	"bytes"
	"fmt"
	"slices"

	json "github.com/goccy/go-json"
	"github.com/huangsam/gazeplot/schema"
)

// MarshalJSON writes the nested {feeling: {x: {y: combination}}} document.
// Key order follows store order, so identical stores encode to identical bytes.
func (s *Store) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for fi, f := range s.feelings {
		if fi > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, string(f)); err != nil {
			return nil, err
		}
		buf.WriteByte('{')
		for xi, x := range s.metrics {
			if xi > 0 {
				buf.WriteByte(',')
			}
			if err := writeKey(&buf, string(x)); err != nil {
				return nil, err
			}
			buf.WriteByte('{')
			for yi, y := range s.metrics {
				if yi > 0 {
					buf.WriteByte(',')
				}
				if err := writeKey(&buf, string(y)); err != nil {
					return nil, err
				}
				data, err := s.results[s.slot(fi, xi, yi)].MarshalJSON()
				if err != nil {
					return nil, fmt.Errorf("failed to encode %s/%s/%s: %w", f, x, y, err)
				}
				buf.Write(data)
			}
			buf.WriteByte('}')
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	data, err := json.Marshal(key)
	if err != nil {
		return err
	}
	buf.Write(data)
	buf.WriteByte(':')
	return nil
}

// Decode reads a document written by MarshalJSON back into a store.
func Decode(data []byte) (*Store, error) {
	return Restore(data, nil)
}

// Restore decodes a store and attaches previously computed build reports.
// The reports are dropped unless there is one per combination.
func Restore(data []byte, reports []schema.CombinationReport) (*Store, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	type feelingEntry struct {
		id   schema.FeelingID
		xs   []schema.MetricID
		rows [][]schema.MetricID
		data []schema.Combination
	}
	var entries []feelingEntry
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		e := feelingEntry{id: schema.FeelingID(key)}
		if err := expectDelim(dec, '{'); err != nil {
			return nil, err
		}
		for dec.More() {
			x, err := readKey(dec)
			if err != nil {
				return nil, err
			}
			e.xs = append(e.xs, schema.MetricID(x))
			var ys []schema.MetricID
			if err := expectDelim(dec, '{'); err != nil {
				return nil, err
			}
			for dec.More() {
				y, err := readKey(dec)
				if err != nil {
					return nil, err
				}
				var c schema.Combination
				if err := dec.Decode(&c); err != nil {
					return nil, fmt.Errorf("failed to decode %s/%s/%s: %w", key, x, y, err)
				}
				ys = append(ys, schema.MetricID(y))
				e.data = append(e.data, c)
			}
			if err := expectDelim(dec, '}'); err != nil {
				return nil, err
			}
			e.rows = append(e.rows, ys)
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}

	feelings := make([]schema.FeelingID, len(entries))
	for i, e := range entries {
		feelings[i] = e.id
	}
	var metrics []schema.MetricID
	if len(entries) > 0 {
		metrics = entries[0].xs
	}
	s := newStore(feelings, metrics)
	if len(s.fIndex) != len(feelings) || len(s.mIndex) != len(metrics) {
		return nil, fmt.Errorf("store has duplicate keys")
	}

	for fi, e := range entries {
		if !slices.Equal(e.xs, metrics) {
			return nil, fmt.Errorf("feeling %s: x metrics differ from the catalog", e.id)
		}
		for xi, ys := range e.rows {
			if !slices.Equal(ys, metrics) {
				return nil, fmt.Errorf("feeling %s, x %s: y metrics differ from the catalog", e.id, e.xs[xi])
			}
		}
		copy(s.results[s.slot(fi, 0, 0):], e.data)
	}
	if len(reports) == len(s.results) {
		s.reports = reports
	}
	return s, nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
