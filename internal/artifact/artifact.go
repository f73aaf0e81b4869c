// Package artifact writes the self-contained HTML document that embeds a lookup
// store together with the overview/detail navigation that reads it.
package artifact

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/huangsam/gazeplot/core/engine"
	"github.com/huangsam/gazeplot/core/nav"
	"github.com/huangsam/gazeplot/core/store"
	"github.com/huangsam/gazeplot/schema"
)

// EChartsURL is the chart library the document loads.
const EChartsURL = "https://cdn.jsdelivr.net/npm/echarts@5.5.1/dist/echarts.min.js"

// Options describe the document around the store.
type Options struct {
	Title       string
	Initial     nav.State // starting overview, usually nav.Initial
	Sizing      engine.Options
	RunID       string
	Fingerprint string
	Generated   time.Time
}

// page is the data handed to the template.
type page struct {
	Title       string
	ScriptURL   string
	Store       json.RawMessage
	Feelings    []schema.FeelingID
	Metrics     []schema.MetricID
	Initial     nav.State
	Scale       int
	MinSize     int
	CenterColor string
	CenterSize  int
	NoData      string
	RunID       string
	Fingerprint string
	Generated   string
}

// scriptJSON encodes v for a <script> block. "</" is escaped so that no string
// inside the data can close the block.
func scriptJSON(v any) (template.JS, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return template.JS(bytes.ReplaceAll(data, []byte("</"), []byte(`<\/`))), nil
}

var pageTemplate = template.Must(template.New("artifact").Funcs(template.FuncMap{
	"json": scriptJSON,
}).Parse(htmlTemplate))

// Render writes the document for s to w.
func Render(w io.Writer, s *store.Store, opts Options) error {
	doc, err := s.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}
	feelings, metrics := s.Feelings(), s.Metrics()
	if feelings == nil {
		feelings = []schema.FeelingID{}
	}
	if metrics == nil {
		metrics = []schema.MetricID{}
	}
	generated := ""
	if !opts.Generated.IsZero() {
		generated = opts.Generated.Format(time.RFC3339)
	}

	p := page{
		Title:       opts.Title,
		ScriptURL:   EChartsURL,
		Store:       doc,
		Feelings:    feelings,
		Metrics:     metrics,
		Initial:     opts.Initial,
		Scale:       opts.Sizing.Scale,
		MinSize:     opts.Sizing.MinMarkerSize,
		CenterColor: nav.CenterColor,
		CenterSize:  nav.CenterSize,
		NoData:      schema.NoDataMessage,
		RunID:       opts.RunID,
		Fingerprint: opts.Fingerprint,
		Generated:   generated,
	}
	if err := pageTemplate.Execute(w, p); err != nil {
		return fmt.Errorf("failed to render artifact: %w", err)
	}
	return nil
}

// WriteFile renders the document for s into path.
func WriteFile(path string, s *store.Store, opts Options) error {
	var buf bytes.Buffer
	if err := Render(&buf, s, opts); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
