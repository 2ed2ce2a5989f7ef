package cli

import (
	"fmt"

	"github.com/stratalab/strata/internal/compiler"
	"github.com/stratalab/strata/internal/dataset"
	"github.com/stratalab/strata/internal/ingest"
)

// resolveSchema loads the schema selected by the global --schema flag:
// a CUE file path, or the built-in heart failure schema when unset.
func resolveSchema(opts *RootOptions) (*dataset.Schema, error) {
	if opts.Schema == "" {
		return compiler.BuiltinSchema()
	}
	s, err := compiler.LoadSchemaFile(opts.Schema)
	if err != nil {
		return nil, fmt.Errorf("loading schema %s: %w", opts.Schema, err)
	}
	return s, nil
}

// loadTable resolves the schema and ingests the CSV at path against it.
// The ingest report is returned even on failure so commands can surface
// missing-cell counts alongside the error.
func loadTable(opts *RootOptions, path string) (*dataset.Table, *ingest.Report, *dataset.Schema, error) {
	schema, err := resolveSchema(opts)
	if err != nil {
		return nil, nil, nil, err
	}
	table, rep, err := ingest.ReadFile(path, schema)
	if err != nil {
		return nil, rep, schema, err
	}
	return table, rep, schema, nil
}
