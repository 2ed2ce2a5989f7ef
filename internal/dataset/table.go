package dataset

import (
	"fmt"
	"math"
)

// Table is an immutable, column-major, fully-populated numeric table.
//
// Tables never change after construction: every accessor returns a copy, and
// NewTable validates all schema invariants up front so downstream components
// (splitter, preprocessor, reports) can treat the data as trusted and
// read-only. A few hundred rows make copying cheaper than aliasing bugs.
type Table struct {
	schema *Schema
	cols   [][]float64
	rows   int
}

// NewTable constructs a Table from column-major data in schema order.
//
// Validation is eager and total: shape first, then cell invariants column by
// column. On any violation NewTable returns an IntegrityError and no Table.
// The provided slices are copied, so callers may reuse their buffers.
func NewTable(s *Schema, cols [][]float64) (*Table, error) {
	if s == nil {
		return nil, &IntegrityError{
			Code:    ErrCodeShapeMismatch,
			Message: "schema is nil",
			Row:     -1,
		}
	}
	if len(cols) != len(s.Columns) {
		return nil, &IntegrityError{
			Code:    ErrCodeShapeMismatch,
			Message: fmt.Sprintf("schema declares %d columns, data has %d", len(s.Columns), len(cols)),
			Row:     -1,
		}
	}
	if len(cols) == 0 {
		return nil, &IntegrityError{
			Code:    ErrCodeShapeMismatch,
			Message: "schema declares no columns",
			Row:     -1,
		}
	}

	rows := len(cols[0])
	for i, col := range cols {
		if len(col) != rows {
			return nil, &IntegrityError{
				Code:    ErrCodeShapeMismatch,
				Message: fmt.Sprintf("column has %d rows, expected %d", len(col), rows),
				Column:  s.Columns[i].Name,
				Row:     -1,
			}
		}
	}
	if rows == 0 {
		return nil, &IntegrityError{
			Code:    ErrCodeShapeMismatch,
			Message: "table has no rows",
			Row:     -1,
		}
	}

	// Missing values are collected across all columns before failing so the
	// error can report complete per-column counts.
	missing := make(map[string]int)
	totalMissing := 0
	for i, col := range cols {
		name := s.Columns[i].Name
		for _, v := range col {
			if math.IsNaN(v) {
				missing[name]++
				totalMissing++
			}
		}
	}
	if totalMissing > 0 {
		return nil, NewMissingValueError(missing, totalMissing)
	}

	for i, col := range cols {
		c := s.Columns[i]
		for r, v := range col {
			if math.IsInf(v, 0) {
				return nil, &IntegrityError{
					Code:    ErrCodeNonFinite,
					Message: "value is not finite",
					Column:  c.Name,
					Row:     r,
				}
			}
			switch c.Kind {
			case KindBinary:
				if v != 0 && v != 1 {
					return nil, &IntegrityError{
						Code:    ErrCodeBinaryDomain,
						Message: fmt.Sprintf("binary column holds %v, want 0 or 1", v),
						Column:  c.Name,
						Row:     r,
					}
				}
			case KindContinuous:
				if c.Min != nil && v < *c.Min {
					return nil, &IntegrityError{
						Code:    ErrCodeBoundViolation,
						Message: fmt.Sprintf("value %v below declared minimum %v", v, *c.Min),
						Column:  c.Name,
						Row:     r,
					}
				}
			default:
				return nil, &IntegrityError{
					Code:    ErrCodeShapeMismatch,
					Message: fmt.Sprintf("unknown column kind %q", c.Kind),
					Column:  c.Name,
					Row:     -1,
				}
			}
		}
	}

	copied := make([][]float64, len(cols))
	for i, col := range cols {
		copied[i] = append([]float64(nil), col...)
	}

	return &Table{schema: s, cols: copied, rows: rows}, nil
}

// Schema returns the table's schema.
func (t *Table) Schema() *Schema {
	return t.schema
}

// Rows returns the number of data rows.
func (t *Table) Rows() int {
	return t.rows
}

// Col returns a copy of the named column's values in row order.
// Panics if the column does not exist; existence is a schema-level fact
// callers are expected to have established.
func (t *Table) Col(name string) []float64 {
	i := t.schema.Index(name)
	if i < 0 {
		panic(fmt.Sprintf("dataset: no column %q in schema %q", name, t.schema.Name))
	}
	return append([]float64(nil), t.cols[i]...)
}

// Value returns the cell at (row, column name) without copying.
func (t *Table) Value(row int, name string) float64 {
	i := t.schema.Index(name)
	if i < 0 {
		panic(fmt.Sprintf("dataset: no column %q in schema %q", name, t.schema.Name))
	}
	return t.cols[i][row]
}

// Label returns a copy of the label column's values in row order.
func (t *Table) Label() []float64 {
	return t.Col(t.schema.Label)
}

// ColRows returns a copy of the named column restricted to the given row
// indices, in the order given. Row indices must be within range.
func (t *Table) ColRows(name string, rows []int) ([]float64, error) {
	i := t.schema.Index(name)
	if i < 0 {
		return nil, &IntegrityError{
			Code:    ErrCodeShapeMismatch,
			Message: fmt.Sprintf("no column %q", name),
			Column:  name,
			Row:     -1,
		}
	}
	out := make([]float64, len(rows))
	for j, r := range rows {
		if r < 0 || r >= t.rows {
			return nil, &IntegrityError{
				Code:    ErrCodeShapeMismatch,
				Message: fmt.Sprintf("row index %d out of range [0,%d)", r, t.rows),
				Column:  name,
				Row:     r,
			}
		}
		out[j] = t.cols[i][r]
	}
	return out, nil
}
