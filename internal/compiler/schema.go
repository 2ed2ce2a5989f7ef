// Package compiler turns CUE dataset definitions into dataset.Schema values.
//
// Schemas are declared declaratively:
//
//	dataset: heart_failure: {
//		label: "death_event"
//		exclude: ["time"]
//		columns: [
//			{name: "age", kind: "continuous", min: 0},
//			{name: "death_event", csv: "DEATH_EVENT", kind: "binary"},
//		]
//	}
//
// Compilation reports structural problems (missing required fields) with
// source positions; Validate checks semantic rules on the compiled schema
// and collects every violation instead of failing fast.
package compiler

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/stratalab/strata/internal/dataset"
)

// CompileSchema parses a CUE value into a dataset.Schema.
// The value should be the dataset struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`dataset: heart_failure: { ... }`)
//	s, err := CompileSchema(v.LookupPath(cue.ParsePath("dataset.heart_failure")))
func CompileSchema(v cue.Value) (*dataset.Schema, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	s := &dataset.Schema{}

	// Dataset name comes from the struct label (the path selector).
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		s.Name = labels[len(labels)-1].String()
	}

	labelVal := v.LookupPath(cue.ParsePath("label"))
	if !labelVal.Exists() {
		return nil, &CompileError{
			Field:   "label",
			Message: "label is required",
			Pos:     v.Pos(),
		}
	}
	label, err := labelVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	s.Label = label

	s.Exclude, err = parseExclude(v)
	if err != nil {
		return nil, err
	}

	s.Columns, err = parseColumns(v)
	if err != nil {
		return nil, err
	}
	if len(s.Columns) == 0 {
		return nil, &CompileError{
			Field:   "columns",
			Message: "at least one column is required",
			Pos:     v.Pos(),
		}
	}

	return s, nil
}

// parseExclude reads the optional exclude list of column names.
func parseExclude(v cue.Value) ([]string, error) {
	exVal := v.LookupPath(cue.ParsePath("exclude"))
	if !exVal.Exists() {
		return nil, nil
	}

	iter, err := exVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var names []string
	for iter.Next() {
		name, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		names = append(names, name)
	}
	return names, nil
}

// parseColumns reads the required columns list.
func parseColumns(v cue.Value) ([]dataset.Column, error) {
	colsVal := v.LookupPath(cue.ParsePath("columns"))
	if !colsVal.Exists() {
		return nil, &CompileError{
			Field:   "columns",
			Message: "columns are required",
			Pos:     v.Pos(),
		}
	}

	iter, err := colsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var cols []dataset.Column
	for i := 0; iter.Next(); i++ {
		col, err := parseColumn(iter.Value(), i)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// parseColumn reads one column declaration: name and kind are required,
// csv and min are optional.
func parseColumn(v cue.Value, i int) (dataset.Column, error) {
	var col dataset.Column

	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return col, &CompileError{
			Field:   fmt.Sprintf("columns[%d].name", i),
			Message: "column name is required",
			Pos:     v.Pos(),
		}
	}
	name, err := nameVal.String()
	if err != nil {
		return col, formatCUEError(err)
	}
	col.Name = name

	kindVal := v.LookupPath(cue.ParsePath("kind"))
	if !kindVal.Exists() {
		return col, &CompileError{
			Field:   fmt.Sprintf("columns[%d].kind", i),
			Message: fmt.Sprintf("column %q requires a kind", name),
			Pos:     v.Pos(),
		}
	}
	kind, err := kindVal.String()
	if err != nil {
		return col, formatCUEError(err)
	}
	col.Kind = dataset.ColumnKind(kind)

	csvVal := v.LookupPath(cue.ParsePath("csv"))
	if csvVal.Exists() {
		csv, err := csvVal.String()
		if err != nil {
			return col, formatCUEError(err)
		}
		col.CSVName = csv
	}

	minVal := v.LookupPath(cue.ParsePath("min"))
	if minVal.Exists() {
		min, err := minVal.Float64()
		if err != nil {
			return col, formatCUEError(err)
		}
		col.Min = &min
	}

	return col, nil
}

// CompileBytes compiles CUE source holding exactly one dataset declaration
// under a top-level "dataset" struct and returns its schema. The filename
// is used in error positions only. Semantic rules are checked after
// compilation; the first violation is returned. Use ValidateBytes to
// collect every violation instead.
func CompileBytes(filename string, src []byte) (*dataset.Schema, error) {
	schema, err := compileStructural(filename, src)
	if err != nil {
		return nil, err
	}
	if verrs := Validate(schema); len(verrs) > 0 {
		return nil, verrs[0]
	}
	return schema, nil
}

// ValidateBytes compiles the named CUE source and reports every semantic
// violation at once. Structural problems (syntax errors, missing required
// fields) abort compilation and come back as err; a structurally sound
// schema is returned together with the full violation list, which is empty
// when the schema is valid.
func ValidateBytes(filename string, src []byte) (*dataset.Schema, []ValidationError, error) {
	schema, err := compileStructural(filename, src)
	if err != nil {
		return nil, nil, err
	}
	return schema, Validate(schema), nil
}

// compileStructural parses the source and shapes it into a schema without
// applying semantic rules.
func compileStructural(filename string, src []byte) (*dataset.Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	dsVal := v.LookupPath(cue.ParsePath("dataset"))
	if !dsVal.Exists() {
		return nil, &CompileError{
			Field:   "dataset",
			Message: "top-level dataset declaration is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := dsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var schema *dataset.Schema
	for iter.Next() {
		if schema != nil {
			return nil, &CompileError{
				Field:   "dataset",
				Message: "multiple dataset declarations in one file; declare exactly one",
				Pos:     iter.Value().Pos(),
			}
		}
		schema, err = CompileSchema(iter.Value())
		if err != nil {
			return nil, err
		}
	}
	if schema == nil {
		return nil, &CompileError{
			Field:   "dataset",
			Message: "dataset declaration is empty",
			Pos:     dsVal.Pos(),
		}
	}
	return schema, nil
}

// LoadSchemaFile compiles the dataset schema in the named CUE file.
func LoadSchemaFile(path string) (*dataset.Schema, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	return CompileBytes(path, src)
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
