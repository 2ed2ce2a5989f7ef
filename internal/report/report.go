// Package report turns a pipeline result into human-readable text and
// machine-readable JSON.
//
// Reports are deterministic for a given (configuration, input) pair:
// wall-clock timings and other run-local noise are deliberately excluded so
// rendered reports can serve as golden files.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/stratalab/strata/internal/dataset"
	"github.com/stratalab/strata/internal/pipeline"
	"github.com/stratalab/strata/internal/preprocess"
	"github.com/stratalab/strata/internal/split"
)

// Report is the full account of one preparation run.
type Report struct {
	RunID        string            `json:"run_id"`
	Dataset      string            `json:"dataset"`
	Fingerprint  string            `json:"fingerprint"`
	Rows         int               `json:"rows"`
	MissingCells int               `json:"missing_cells"`
	Seed         int64             `json:"seed"`
	Shuffled     bool              `json:"shuffled"`
	Proportions  split.Proportions `json:"proportions"`

	// Balance is the class distribution of the whole dataset.
	Balance dataset.Balance `json:"class_balance"`

	// Partitions reports train, validation, and test in that order.
	Partitions []Partition `json:"partitions"`

	// Columns holds per-column statistics over the full dataset.
	Columns []dataset.ColumnSummary `json:"columns"`

	// TrainRows is the number of rows the transform was fitted on.
	TrainRows int `json:"train_rows"`

	// Transform holds the frozen per-column transform parameters.
	Transform []preprocess.ColumnTransform `json:"transform"`
}

// Partition reports one partition's share of the dataset.
type Partition struct {
	Name        string          `json:"name"`
	Rows        int             `json:"rows"`
	Fraction    float64         `json:"fraction"`
	Fingerprint string          `json:"fingerprint"`
	Balance     dataset.Balance `json:"class_balance"`
}

// Build assembles a report from a pipeline result.
func Build(res *pipeline.Result) *Report {
	m := res.Manifest
	return &Report{
		RunID:        res.RunID,
		Dataset:      m.Dataset,
		Fingerprint:  m.Fingerprint,
		Rows:         m.Rows,
		MissingCells: res.Ingest.TotalMissing(),
		Seed:         m.Seed,
		Shuffled:     m.Shuffled,
		Proportions:  m.Proportions,
		Balance:      res.Summary.Balance,
		Partitions: []Partition{
			buildPartition("train", m.Train, res.Balance.Train, m.Rows),
			buildPartition("validation", m.Validation, res.Balance.Validation, m.Rows),
			buildPartition("test", m.Test, res.Balance.Test, m.Rows),
		},
		Columns:   res.Summary.Columns,
		TrainRows: res.Transform.TrainRows(),
		Transform: res.Transform.Columns(),
	}
}

func buildPartition(name string, e split.ManifestEntry, b dataset.Balance, total int) Partition {
	frac := 0.0
	if total > 0 {
		frac = float64(e.Rows) / float64(total)
	}
	return Partition{
		Name:        name,
		Rows:        e.Rows,
		Fraction:    frac,
		Fingerprint: e.Fingerprint,
		Balance:     b,
	}
}

// RenderJSON writes the report as indented JSON.
func RenderJSON(w io.Writer, r *Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// RenderText writes the report in fixed-width text form. The layout is
// stable: same report, same bytes.
func RenderText(w io.Writer, r *Report) error {
	fmt.Fprintf(w, "Preparation Report: %s\n", r.Dataset)
	fmt.Fprintf(w, "Run ID:      %s\n", r.RunID)
	fmt.Fprintf(w, "Fingerprint: %s\n", r.Fingerprint)
	fmt.Fprintf(w, "Rows:        %d\n", r.Rows)
	fmt.Fprintf(w, "Missing:     %d cell(s)\n", r.MissingCells)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Class Balance ===")
	renderBalance(w, "  ", r.Balance)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Partitions ===")
	fmt.Fprintf(w, "  seed %d, shuffled=%v, target %g/%g/%g\n",
		r.Seed, r.Shuffled, r.Proportions.Train, r.Proportions.Validation, r.Proportions.Test)
	for _, p := range r.Partitions {
		fmt.Fprintf(w, "  %-12s %5d rows  (%6.2f%%)\n", p.Name, p.Rows, 100*p.Fraction)
		renderBalance(w, "    ", p.Balance)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Columns ===")
	fmt.Fprintf(w, "  %-24s %-10s %12s %12s %12s %12s %12s\n",
		"column", "kind", "mean", "stddev", "min", "max", "median")
	for _, c := range r.Columns {
		fmt.Fprintf(w, "  %-24s %-10s %12.3f %12.3f %12.3f %12.3f %12.3f\n",
			c.Name, c.Kind, c.Mean, c.StdDev, c.Min, c.Max, c.Median)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "=== Transform (fitted on %d training rows) ===\n", r.TrainRows)
	for _, ct := range r.Transform {
		if ct.Standardize {
			fmt.Fprintf(w, "  %-24s standardize  mean=%.6f std=%.6f\n", ct.Name, ct.Mean, ct.Std)
		} else {
			fmt.Fprintf(w, "  %-24s pass-through\n", ct.Name)
		}
	}

	return nil
}

func renderBalance(w io.Writer, indent string, b dataset.Balance) {
	for _, c := range b {
		fmt.Fprintf(w, "%slabel %g: %5d  (%6.2f%%)\n", indent, c.Label, c.Count, 100*c.Fraction)
	}
}
