package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/huangsam/gazeplot/internal/contract"
	"github.com/huangsam/gazeplot/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintView outputs a rendered view, dispatching based on the output format configured.
func PrintView(view schema.View, cfg *contract.Config) error {
	if cfg.Output == schema.ParquetOut {
		return fmt.Errorf("parquet output is not available for a single view; use the export command")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteView(w, view, cfg)
	}, fmt.Sprintf("Wrote %s", cfg.Output))
}

// WriteView renders a view to w.
func WriteView(w io.Writer, view schema.View, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	var err error
	switch cfg.Output {
	case schema.JSONOut:
		err = writeJSON(w, view)
	case schema.YAMLOut:
		err = writeYAML(w, view)
	case schema.CSVOut:
		err = writeViewCSV(w, view, fmtFloat)
	default:
		err = writeViewText(w, view, cfg, fmtFloat)
	}
	if err != nil {
		return fmt.Errorf("error writing view output: %w", err)
	}
	return nil
}

// writeViewCSV writes one row per marker. The detail center comes last with role "center".
func writeViewCSV(w io.Writer, view schema.View, fmtFloat func(float64) string) error {
	header := []string{"role", "name", "x", "y", "size", "color", "clicks"}
	role := "group"
	if view.Kind == schema.DetailView {
		role = "point"
	}
	markerRow := func(role string, m schema.Marker) []string {
		return []string{role, m.Name, fmtFloat(m.X), fmtFloat(m.Y), strconv.Itoa(m.Size), m.Color, strconv.Itoa(m.Clicks)}
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, m := range view.Markers {
			if err := cw.Write(markerRow(role, m)); err != nil {
				return err
			}
		}
		if view.Center != nil {
			return cw.Write(markerRow("center", *view.Center))
		}
		return nil
	})
}

func writeViewText(w io.Writer, view schema.View, cfg *contract.Config, fmtFloat func(float64) string) error {
	bold := color.New(color.Bold)
	_, _ = fmt.Fprintln(w, bold.Sprint(view.Title))
	_, _ = fmt.Fprintf(w, "x: %s\ny: %s\n", view.X, view.Y)

	if !view.HasData() {
		_, err := fmt.Fprintln(w, color.YellowString(schema.NoDataMessage))
		return err
	}

	nameHeader := "Group"
	if view.Kind == schema.DetailView {
		nameHeader = "Point"
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{nameHeader, "X", "Y", "Size", "Color", "Clicks"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := getMaxLabelWidth(cfg, 50)
	var data [][]string
	for _, m := range view.Markers {
		data = append(data, []string{
			contract.TruncateLabel(m.Name, nameWidth),
			fmtFloat(m.X),
			fmtFloat(m.Y),
			strconv.Itoa(m.Size),
			m.Color,
			strconv.Itoa(m.Clicks),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if c := view.Center; c != nil {
		_, _ = fmt.Fprintf(w, "%s %s at (%s, %s), %d clicks\n", color.YellowString("★"), c.Label, fmtFloat(c.X), fmtFloat(c.Y), c.Clicks)
	}
	if len(view.Legend) > 0 {
		_, _ = fmt.Fprint(w, "Legend:")
		for _, e := range view.Legend {
			_, _ = fmt.Fprintf(w, " %s=%d", e.Label, e.Size)
		}
		_, _ = fmt.Fprintln(w)
	}
	return nil
}
