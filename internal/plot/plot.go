// Package plot renders dataset visualizations as PNG files: per-feature
// histograms, per-class box plots, and partition class-balance bars.
//
// File names are fixed functions of column names, so repeated runs write
// the same set of files.
package plot

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"

	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/stratalab/strata/internal/dataset"
	"github.com/stratalab/strata/internal/split"
)

// histBins is the bin count for feature histograms.
const histBins = 16

// palette gives each series a stable, distinguishable color.
var palette = []color.RGBA{
	{R: 66, G: 133, B: 244, A: 255},
	{R: 219, G: 68, B: 55, A: 255},
	{R: 244, G: 180, B: 0, A: 255},
	{R: 15, G: 157, B: 88, A: 255},
}

func seriesColor(i int) color.RGBA { return palette[i%len(palette)] }

// SaveHistograms renders one histogram PNG per continuous feature column.
// Files are named hist_<column>.png and returned in schema order.
func SaveHistograms(t *dataset.Table, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create plot dir: %w", err)
	}

	var paths []string
	for _, col := range t.Schema().FeatureColumns() {
		if col.Kind != dataset.KindContinuous {
			continue
		}
		values := t.Col(col.Name)

		p := gplot.New()
		p.Title.Text = col.Name + " distribution"
		p.X.Label.Text = col.Name
		p.Y.Label.Text = "count"

		h, err := plotter.NewHist(plotter.Values(values), histBins)
		if err != nil {
			return nil, fmt.Errorf("histogram %s: %w", col.Name, err)
		}
		h.FillColor = seriesColor(0)
		p.Add(h)

		path := filepath.Join(dir, "hist_"+col.Name+".png")
		if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
			return nil, fmt.Errorf("save %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// SaveClassBalance renders a grouped bar chart of per-partition class
// fractions to class_balance.png and returns the written path.
func SaveClassBalance(b *split.PartitionBalance, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create plot dir: %w", err)
	}

	partitions := []dataset.Balance{b.Train, b.Validation, b.Test}
	labels := labelSet(partitions)

	p := gplot.New()
	p.Title.Text = "class balance by partition"
	p.Y.Label.Text = "fraction of partition"
	p.Y.Max = 1

	width := vg.Points(20)
	for i, label := range labels {
		vals := make(plotter.Values, len(partitions))
		for j, pb := range partitions {
			vals[j] = pb.Fraction(label)
		}
		bars, err := plotter.NewBarChart(vals, width)
		if err != nil {
			return "", fmt.Errorf("bar chart label %g: %w", label, err)
		}
		bars.Color = seriesColor(i)
		bars.Offset = width * vg.Length(float64(i)-float64(len(labels)-1)/2)
		p.Add(bars)
		p.Legend.Add(fmt.Sprintf("label %g", label), bars)
	}
	p.NominalX("train", "validation", "test")
	p.Legend.Top = true

	path := filepath.Join(dir, "class_balance.png")
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	return path, nil
}

// SaveBoxPlots renders one PNG per continuous feature column with one box
// per class. Files are named box_<column>.png and returned in schema order.
func SaveBoxPlots(t *dataset.Table, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create plot dir: %w", err)
	}

	labels, classRows := t.ClassIndices()

	var paths []string
	for _, col := range t.Schema().FeatureColumns() {
		if col.Kind != dataset.KindContinuous {
			continue
		}

		p := gplot.New()
		p.Title.Text = col.Name + " by class"
		p.Y.Label.Text = col.Name

		names := make([]string, len(labels))
		for i, label := range labels {
			values, err := t.ColRows(col.Name, classRows[i])
			if err != nil {
				return nil, err
			}
			box, err := plotter.NewBoxPlot(vg.Points(30), float64(i), plotter.Values(values))
			if err != nil {
				return nil, fmt.Errorf("box plot %s label %g: %w", col.Name, label, err)
			}
			box.FillColor = seriesColor(i)
			p.Add(box)
			names[i] = fmt.Sprintf("label %g", label)
		}
		p.NominalX(names...)

		path := filepath.Join(dir, "box_"+col.Name+".png")
		if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
			return nil, fmt.Errorf("save %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// labelSet returns every label value seen across the balances, ascending.
func labelSet(partitions []dataset.Balance) []float64 {
	seen := map[float64]bool{}
	var labels []float64
	for _, b := range partitions {
		for _, c := range b {
			if !seen[c.Label] {
				seen[c.Label] = true
				labels = append(labels, c.Label)
			}
		}
	}
	sort.Float64s(labels)
	return labels
}
