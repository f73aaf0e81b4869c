// Package schema has models, identifiers and constants for all parts of gazeplot.
package schema

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

// Typed keys of the lookup store.
type (
	// FeelingID identifies an emotion or functional benefit under study.
	FeelingID string

	// MetricID is the name of a numeric column surfaced by the metric catalog.
	MetricID string

	// GroupName is a color family within a feeling.
	GroupName string
)

// GroupResult is the precomputed data of one group for one combination.
// The Detail* slices are index-aligned.
type GroupResult struct {
	CenterX      float64   `json:"center_x"`
	CenterY      float64   `json:"center_y"`
	Color        string    `json:"color"`
	DetailX      []float64 `json:"detail_x"`
	DetailY      []float64 `json:"detail_y"`
	DetailColor  []string  `json:"detail_color"`
	DetailSize   []int     `json:"detail_size"`
	DetailChoice []int     `json:"detail_choice"`
	DetailNames  []string  `json:"detail_names"`
	MarkerSize   int       `json:"marker_size"`
	Choice       int       `json:"choice"`
}

// Len returns the number of points in the group.
func (g GroupResult) Len() int {
	return len(g.DetailNames)
}

// GroupEntry pairs a group name with its result, keeping insertion order.
type GroupEntry struct {
	Name   GroupName
	Result GroupResult
}

// Combination is the precomputed data for one (feeling, x, y) triple.
// A Combination with no groups is the empty sentinel.
type Combination struct {
	Groups    []GroupEntry
	MaxClicks int
}

// IsEmpty reports whether c is the empty sentinel.
func (c Combination) IsEmpty() bool {
	return len(c.Groups) == 0
}

// Group returns the result for the named group.
func (c Combination) Group(name GroupName) (GroupResult, bool) {
	for _, g := range c.Groups {
		if g.Name == name {
			return g.Result, true
		}
	}
	return GroupResult{}, false
}

// GroupNames returns the group names in display order.
func (c Combination) GroupNames() []GroupName {
	names := make([]GroupName, 0, len(c.Groups))
	for _, g := range c.Groups {
		names = append(names, g.Name)
	}
	return names
}

// MarshalJSON writes {"data":{...},"max_clicks":n} with groups in display order.
func (c Combination) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"data":{`)
	for i, g := range c.Groups {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(g.Name))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(g.Result)
		if err != nil {
			return nil, fmt.Errorf("failed to encode group %s: %w", g.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	fmt.Fprintf(&buf, `},"max_clicks":%d}`, c.MaxClicks)
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the format written by MarshalJSON, keeping group order.
func (c *Combination) UnmarshalJSON(b []byte) error {
	var raw struct {
		Data      json.RawMessage `json:"data"`
		MaxClicks int             `json:"max_clicks"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	groups, err := decodeGroups(raw.Data)
	if err != nil {
		return err
	}
	c.Groups = groups
	c.MaxClicks = raw.MaxClicks
	return nil
}

// decodeGroups walks a JSON object token by token so that key order survives.
func decodeGroups(data []byte) ([]GroupEntry, error) {
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	var groups []GroupEntry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected group name, got %v", tok)
		}
		var result GroupResult
		if err := dec.Decode(&result); err != nil {
			return nil, fmt.Errorf("failed to decode group %s: %w", name, err)
		}
		groups = append(groups, GroupEntry{Name: GroupName(name), Result: result})
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return groups, nil
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
