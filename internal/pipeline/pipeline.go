// Package pipeline orchestrates a full preparation run: compile the schema,
// ingest the CSV, summarize, split, fit the transform on the training
// partition, and apply it to all three partitions.
//
// A run is a pure function of (configuration, input bytes): the same config
// over the same CSV yields the same partitions, the same transform
// parameters, and the same fingerprints. Only the run ID differs between
// runs, and tests pin that with a fixed generator.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/stratalab/strata/internal/compiler"
	"github.com/stratalab/strata/internal/dataset"
	"github.com/stratalab/strata/internal/ingest"
	"github.com/stratalab/strata/internal/preprocess"
	"github.com/stratalab/strata/internal/split"
)

// Set is one prepared partition: the transformed feature matrix plus
// labels, with the source row indices retained for provenance.
type Set struct {
	// Name is "train", "validation", or "test".
	Name string

	// Rows are the source table row indices this set was built from,
	// in ascending order.
	Rows []int

	// X is the len(Rows) x len(model columns) feature matrix after the
	// fitted transform has been applied.
	X *mat.Dense

	// Y holds the label value of each row, aligned with X.
	Y []float64
}

// Sets groups the three prepared partitions.
type Sets struct {
	Train      *Set
	Validation *Set
	Test       *Set
}

// Result is everything a run produced. Reports, exports, and plots are all
// derived from a Result without touching the source file again.
type Result struct {
	// RunID uniquely identifies this run.
	RunID string

	// Schema is the compiled schema the input was validated against.
	Schema *dataset.Schema

	// Table is the validated source table.
	Table *dataset.Table

	// Ingest reports source dimensions and per-column missing counts.
	Ingest *ingest.Report

	// Summary holds per-column statistics over the full table.
	Summary *dataset.Summary

	// Partition holds the stratified row indices.
	Partition *split.Partition

	// Manifest pins the split's provenance: fingerprints, sizes, config.
	Manifest *split.Manifest

	// Balance holds the class distribution of each partition.
	Balance *split.PartitionBalance

	// Transform holds the parameters fitted on the training partition.
	Transform *preprocess.FittedTransform

	// Sets holds the transformed partitions.
	Sets Sets

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration
}

// Runner executes preparation runs.
//
// The zero value is ready to use: it generates UUIDv7 run IDs and logs to
// slog.Default(). Tests override IDs for byte-stable output.
type Runner struct {
	// IDs generates run identifiers. Nil selects UUIDv7Generator.
	IDs RunIDGenerator

	// Logger receives progress events. Nil selects slog.Default().
	Logger *slog.Logger
}

// Run executes cfg with a zero Runner.
func Run(ctx context.Context, cfg *Config) (*Result, error) {
	r := &Runner{}
	return r.Run(ctx, cfg)
}

// Run executes the pipeline described by cfg.
//
// Stages run in order: schema, ingest, summarize, split, fit, apply. The
// context is polled between stages; a cancelled context aborts the run at
// the next stage boundary.
func (r *Runner) Run(ctx context.Context, cfg *Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ids := r.IDs
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	log := r.Logger
	if log == nil {
		log = slog.Default()
	}

	start := time.Now()
	runID := ids.NewRunID()
	log.Info("run started", "run_id", runID, "input", cfg.Input)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	schema, err := loadSchema(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	log.Info("schema compiled", "dataset", schema.Name, "columns", len(schema.Columns))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table, report, err := ingest.ReadFile(cfg.Input, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to ingest %s: %w", cfg.Input, err)
	}
	log.Info("dataset ingested",
		"rows", table.Rows(),
		"columns", report.Columns,
		"missing", report.TotalMissing())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary := table.Summarize()

	part, err := split.Split(table, cfg.splitConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to split: %w", err)
	}
	balance, err := part.Balance(table)
	if err != nil {
		return nil, fmt.Errorf("failed to balance partitions: %w", err)
	}
	manifest := part.Manifest(table)
	log.Info("dataset split",
		"train", len(part.Train),
		"validation", len(part.Validation),
		"test", len(part.Test),
		"seed", part.Seed,
		"shuffled", part.Shuffled)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ft, err := preprocess.Fit(table, part.Train,
		preprocess.WithZeroVariance(cfg.zeroVariancePolicy()))
	if err != nil {
		return nil, fmt.Errorf("failed to fit transform: %w", err)
	}
	log.Info("transform fitted",
		"features", len(ft.FeatureNames()),
		"train_rows", ft.TrainRows())

	sets, err := applyAll(table, ft, part)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	log.Info("run complete", "run_id", runID, "elapsed", elapsed)

	return &Result{
		RunID:     runID,
		Schema:    schema,
		Table:     table,
		Ingest:    report,
		Summary:   summary,
		Partition: part,
		Manifest:  manifest,
		Balance:   balance,
		Transform: ft,
		Sets:      sets,
		Elapsed:   elapsed,
	}, nil
}

// loadSchema resolves the schema source: a CUE file when configured, the
// built-in heart failure schema otherwise.
func loadSchema(cfg *Config) (*dataset.Schema, error) {
	if cfg.Schema == "" {
		return compiler.BuiltinSchema()
	}
	return compiler.LoadSchemaFile(cfg.Schema)
}

// applyAll projects each partition through the fitted transform.
func applyAll(t *dataset.Table, ft *preprocess.FittedTransform, p *split.Partition) (Sets, error) {
	parts := []struct {
		name string
		rows []int
	}{
		{"train", p.Train},
		{"validation", p.Validation},
		{"test", p.Test},
	}

	out := make([]*Set, len(parts))
	for i, part := range parts {
		x, y, err := ft.Apply(t, part.rows)
		if err != nil {
			return Sets{}, fmt.Errorf("failed to transform %s set: %w", part.name, err)
		}
		out[i] = &Set{Name: part.name, Rows: part.rows, X: x, Y: y}
	}
	return Sets{Train: out[0], Validation: out[1], Test: out[2]}, nil
}
