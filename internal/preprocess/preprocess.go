// Package preprocess fits and applies leakage-free feature transforms.
//
// A FittedTransform standardizes continuous model columns to zero mean and
// unit variance using statistics computed ONLY from the training partition;
// binary columns pass through untouched and excluded columns never appear in
// the output. Fitting is a constructor: parameters are frozen at Fit time
// and Apply never recomputes them, so applying the transform to validation
// or test rows cannot leak their distributions into the features.
package preprocess

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/stratalab/strata/internal/dataset"
)

// ZeroVariancePolicy controls how Fit treats a continuous column that is
// constant across the training partition.
type ZeroVariancePolicy int

const (
	// FailOnZeroVariance aborts the fit with a DivideByZeroError. Default.
	FailOnZeroVariance ZeroVariancePolicy = iota

	// PassThroughZeroVariance leaves the degenerate column unstandardized.
	PassThroughZeroVariance
)

// Option configures Fit.
type Option func(*options)

type options struct {
	policy ZeroVariancePolicy
}

// WithZeroVariance sets the zero-variance policy.
func WithZeroVariance(p ZeroVariancePolicy) Option {
	return func(o *options) { o.policy = p }
}

// ColumnTransform is the frozen per-column rule: standardize with the stored
// moments, or pass the value through unchanged.
type ColumnTransform struct {
	Name        string  `json:"name"`
	Standardize bool    `json:"standardize"`
	Mean        float64 `json:"mean,omitempty"`
	Std         float64 `json:"std,omitempty"`
}

// FittedTransform holds the frozen transform parameters for a schema's model
// columns (features minus label minus excluded), in schema order.
type FittedTransform struct {
	columns   []ColumnTransform
	label     string
	trainRows int
}

// Fit computes transform parameters from the training rows of a table.
//
// All statistics are computed before anything is committed: if any
// continuous column is constant over the training partition, Fit returns a
// DivideByZeroError (under the default policy) and no partially-fitted
// transform escapes. The mean and standard deviation are the population
// moments (divisor N).
func Fit(t *dataset.Table, trainRows []int, opts ...Option) (*FittedTransform, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if len(trainRows) == 0 {
		return nil, fmt.Errorf("preprocess: fit requires at least one training row")
	}

	model := t.Schema().ModelColumns()
	columns := make([]ColumnTransform, 0, len(model))
	for _, col := range model {
		ct := ColumnTransform{Name: col.Name}
		if col.Kind == dataset.KindContinuous {
			values, err := t.ColRows(col.Name, trainRows)
			if err != nil {
				return nil, fmt.Errorf("fitting %q: %w", col.Name, err)
			}
			std := stat.PopStdDev(values, nil)
			if std == 0 {
				if o.policy != PassThroughZeroVariance {
					return nil, &DivideByZeroError{Column: col.Name, TrainRows: len(trainRows)}
				}
				// Degenerate column stays pass-through.
			} else {
				ct.Standardize = true
				ct.Mean = stat.Mean(values, nil)
				ct.Std = std
			}
		}
		columns = append(columns, ct)
	}

	return &FittedTransform{
		columns:   columns,
		label:     t.Schema().Label,
		trainRows: len(trainRows),
	}, nil
}

// Columns returns a copy of the per-column transform parameters.
func (ft *FittedTransform) Columns() []ColumnTransform {
	return append([]ColumnTransform(nil), ft.columns...)
}

// FeatureNames returns the output column names in matrix order.
func (ft *FittedTransform) FeatureNames() []string {
	names := make([]string, len(ft.columns))
	for i, ct := range ft.columns {
		names[i] = ct.Name
	}
	return names
}

// TrainRows returns the size of the training partition the transform was
// fit on.
func (ft *FittedTransform) TrainRows() int {
	return ft.trainRows
}

// Apply transforms the given rows into a feature matrix and a label vector.
//
// The matrix is len(rows) x len(model columns): standardized continuous
// values, untouched binary values, excluded columns absent. Apply is
// read-only on both the transform and the table; the stored parameters are
// used as-is, never refit.
func (ft *FittedTransform) Apply(t *dataset.Table, rows []int) (*mat.Dense, []float64, error) {
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("preprocess: apply requires at least one row")
	}

	X := mat.NewDense(len(rows), len(ft.columns), nil)
	for j, ct := range ft.columns {
		values, err := t.ColRows(ct.Name, rows)
		if err != nil {
			return nil, nil, fmt.Errorf("applying %q: %w", ct.Name, err)
		}
		for i, v := range values {
			if ct.Standardize {
				v = (v - ct.Mean) / ct.Std
			}
			X.Set(i, j, v)
		}
	}

	y, err := t.ColRows(ft.label, rows)
	if err != nil {
		return nil, nil, fmt.Errorf("extracting label %q: %w", ft.label, err)
	}

	return X, y, nil
}
