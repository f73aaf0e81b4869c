// Package fixture provides a small survey dataset for tests across packages.
package fixture

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/huangsam/gazeplot/internal/contract"
	"github.com/huangsam/gazeplot/internal/loader"
	"github.com/huangsam/gazeplot/schema"
)

// Metric names carried by the fixture. Count is only tracked per group.
const (
	Count     schema.MetricID = "Count"
	Duration  schema.MetricID = "Duration"
	Fixations schema.MetricID = "Fixations"
)

// Metrics is the catalog the fixture yields.
var Metrics = []schema.MetricID{Count, Duration, Fixations}

type table struct {
	name    string
	header  []string
	records [][]string
}

func groupsTable() table {
	return table{
		name:   "groups.csv",
		header: []string{"Feeling", "Group", "Count", "Duration", "Fixations", "Click Ratio"},
		records: [][]string{
			{"Happy", "Reds", "12", "300", "5", "0.5"},
			{"Happy", "Yellows", "3", "120", "NA", "0.1"},
			{"Calm", "Blues", "4", "80", "2", "0.2"},
			{"Calm", "Reds", "2", "NA", "1", "0.3"},
			{"Calm", "Teals", "1", "10", "1", "0.1"},
		},
	}
}

func pointsTable() table {
	return table{
		name:   "points.csv",
		header: []string{"Parent Label", "Label_modified", "Duration", "Fixations"},
		records: [][]string{
			{"P2d_Happy_Reds", "img_R1", "100", "2"},
			{"P2d_Happy_Reds", "img_R2", "200", "NA"},
			{"P2d_Happy_Reds", "img_R3", "NA", "1"},
			{"P2d_Happy_Yellows", "img_Y1", "50", "1"},
			{"P2d_Happy_Yellows", "img_Y1", "60", "1"},
			{"P1_Happy_Reds", "img_R9", "10", "1"},
			{"P2d_Calm_Blues", "img_B1", "30", "1"},
			{"P2d_Calm_Reds", "img_R1", "40", "NA"},
			{"P2d_Calm_Teals", "img_T1", "5", "1"},
		},
	}
}

func choicesTable() table {
	t := table{name: "choices.csv", header: []string{"OA Name", "Word_EmotionOrBenefit"}}
	add := func(name, feeling string, n int) {
		for range n {
			t.records = append(t.records, []string{name, feeling})
		}
	}
	add("R1", "Happy", 12)
	add("Y1", "Happy", 3)
	add("Z9", "Happy", 1)
	add("B1", "Calm", 2)
	add("R1", "Calm", 1)
	return t
}

func paletteTable() table {
	return table{
		name:   "palette.csv",
		header: []string{"Nom Teinte", "HEX"},
		records: [][]string{
			{"R1", "#AA0000"},
			{"Y1", "#EEDD00"},
			{"R1", "#000000"},
		},
	}
}

func (t table) build() *loader.Table {
	tbl, err := loader.NewTable(t.name, t.header, t.records)
	if err != nil {
		panic(fmt.Sprintf("fixture %s: %v", t.name, err))
	}
	return tbl
}

// Dataset returns the in-memory fixture tables.
//
// Happy has Reds (R1 with 12 clicks, R2, R3) and Yellows (Y1 with 3 clicks).
// Calm has Blues, Reds with no Duration center, and Teals which has no canonical color.
func Dataset() *loader.Dataset {
	return &loader.Dataset{
		Groups:  groupsTable().build(),
		Points:  pointsTable().build(),
		Choices: choicesTable().build(),
		Palette: paletteTable().build(),
	}
}

// WriteCSV writes the fixture tables into dir and returns a validated config pointing at them.
func WriteCSV(dir string) (*contract.Config, error) {
	paths := make(map[string]string)
	for _, t := range []table{groupsTable(), pointsTable(), choicesTable(), paletteTable()} {
		path := filepath.Join(dir, t.name)
		if err := writeTable(path, t); err != nil {
			return nil, err
		}
		paths[t.name] = path
	}

	cfg := &contract.Config{}
	input := &contract.ConfigRawInput{
		GroupsFile:   paths["groups.csv"],
		PointsFile:   paths["points.csv"],
		ChoicesFile:  paths["choices.csv"],
		PaletteFile:  paths["palette.csv"],
		Workers:      2,
		Precision:    contract.DefaultPrecision,
		Output:       string(schema.TextOut),
		Color:        "no",
		DefaultX:     string(Count),
		DefaultY:     string(Duration),
		CacheBackend: string(schema.NoneBackend),
		Out:          filepath.Join(dir, contract.DefaultArtifactFile),
	}
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return nil, err
	}
	return cfg, nil
}

func writeTable(path string, t table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(t.header); err != nil {
		_ = f.Close()
		return err
	}
	if err := w.WriteAll(t.records); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
