package loader

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/huangsam/gazeplot/internal/contract"
	"github.com/huangsam/gazeplot/schema"
	"golang.org/x/sync/errgroup"
)

// Dataset holds the four input tables. Palette is nil when no palette file is configured.
type Dataset struct {
	Groups  *Table
	Points  *Table
	Choices *Table
	Palette *Table
}

// Read loads a table in the given format. AutoInput picks parquet for
// .parquet and .pq files and CSV otherwise.
func Read(path string, format schema.InputFormat) (*Table, error) {
	if format == schema.AutoInput || format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".parquet", ".pq":
			format = schema.ParquetInput
		default:
			format = schema.CSVInput
		}
	}
	switch format {
	case schema.ParquetInput:
		return ReadParquet(path)
	case schema.CSVInput:
		return ReadCSV(path)
	default:
		return nil, fmt.Errorf("unsupported input format %q", format)
	}
}

// LoadDataset reads every configured table concurrently and checks the label columns.
func LoadDataset(ctx context.Context, cfg *contract.Config) (*Dataset, error) {
	ds := &Dataset{}
	cols := cfg.Columns

	jobs := []struct {
		path     string
		dst      **Table
		required []string
	}{
		{cfg.GroupsFile, &ds.Groups, []string{cols.Feeling, cols.Group}},
		{cfg.PointsFile, &ds.Points, []string{cols.Parent, cols.Label}},
		{cfg.ChoicesFile, &ds.Choices, []string{cols.ChoiceName, cols.ChoiceFeeling}},
		{cfg.PaletteFile, &ds.Palette, []string{cols.PaletteName, cols.PaletteHex}},
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, job := range jobs {
		if job.path == "" {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := Read(job.path, cfg.InputFormat)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", job.path, err)
			}
			if err := t.Require(job.required...); err != nil {
				return err
			}
			*job.dst = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ds, nil
}

// Fingerprint hashes the input files together with every setting that changes
// the computed store, so a changed input or setting yields a new key.
func Fingerprint(cfg *contract.Config) (string, error) {
	h := sha256.New()
	for _, path := range cfg.InputFiles() {
		if err := hashFile(h, path); err != nil {
			return "", err
		}
	}

	c := cfg.Columns
	_, _ = fmt.Fprintf(h, "%s:%s:%s:%s:%s:%s:%s:%s\n",
		c.Feeling, c.Group, c.Parent, c.Label, c.ChoiceName, c.ChoiceFeeling, c.PaletteName, c.PaletteHex)
	_, _ = fmt.Fprintf(h, "%s:%d:%d:%s\n", cfg.DetailMarker, cfg.Scale, cfg.MinMarkerSize, cfg.InputFormat)

	groups := make([]string, 0, len(cfg.Palette))
	for g := range cfg.Palette {
		groups = append(groups, string(g))
	}
	slices.Sort(groups)
	for _, g := range groups {
		_, _ = fmt.Fprintf(h, "%s=%s\n", g, cfg.Palette[schema.GroupName(g)])
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

func hashFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, _ = fmt.Fprintf(w, "%s\n", filepath.Base(path))
	_, err = io.Copy(w, f)
	return err
}
