package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stratalab/strata/internal/compiler"
	"github.com/stratalab/strata/internal/dataset"
	"github.com/stratalab/strata/internal/ingest"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool                       `json:"valid"`
	Dataset string                     `json:"dataset,omitempty"`
	Rows    int                        `json:"rows,omitempty"`
	Errors  []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [data.csv]",
		Short: "Validate a schema and optionally a dataset",
		Long: `Validate a CUE dataset schema and, when a CSV file is given, the data
against it.

Schema validation collects every semantic violation instead of stopping at
the first. Data validation checks the CSV header against the schema and
enforces integrity rules: no missing cells, binary columns in {0,1},
continuous columns within declared bounds, all values finite.

Exit codes:
  0 - Schema (and data) valid
  1 - Validation failed
  2 - Command error (missing files, etc.)

Examples:
  strata validate
  strata validate --schema trial.cue
  strata validate --schema trial.cue data.csv
  strata validate data.csv --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			csvPath := ""
			if len(args) == 1 {
				csvPath = args[0]
			}
			return runValidate(rootOpts, csvPath, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, csvPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	result := ValidationResult{}

	// Compile the schema, collecting every semantic violation.
	var schema *dataset.Schema
	if opts.Schema == "" {
		formatter.VerboseLog("using built-in heart failure schema")
		s, err := compiler.BuiltinSchema()
		if err != nil {
			return failureExit(formatter, err)
		}
		schema = s
	} else {
		formatter.VerboseLog("validating schema %s", opts.Schema)
		src, err := os.ReadFile(opts.Schema)
		if err != nil {
			return failureExit(formatter, fmt.Errorf("reading schema file: %w", err))
		}
		s, verrs, err := compiler.ValidateBytes(opts.Schema, src)
		if err != nil {
			// Structural failure: no schema to validate further.
			return outputValidationErrors(formatter, []compiler.ValidationError{toValidationError(err)})
		}
		if len(verrs) > 0 {
			return outputValidationErrors(formatter, verrs)
		}
		schema = s
	}
	result.Dataset = schema.Name

	// Validate the data when a CSV was given.
	if csvPath != "" {
		formatter.VerboseLog("validating data %s against dataset %q", csvPath, schema.Name)
		_, rep, err := ingest.ReadFile(csvPath, schema)
		if rep != nil {
			result.Rows = rep.Rows
		}
		if err != nil {
			if isDataError(err) {
				return outputValidationErrors(formatter, []compiler.ValidationError{toValidationError(err)})
			}
			return failureExit(formatter, err)
		}
	}

	result.Valid = true
	return outputValidateSuccess(formatter, result, csvPath != "")
}

// toValidationError converts schema and data errors into the common
// validation error shape so all failures render the same way.
func toValidationError(err error) compiler.ValidationError {
	var (
		verr compiler.ValidationError
		cerr *compiler.CompileError
		serr *ingest.SchemaError
		ierr *dataset.IntegrityError
	)
	switch {
	case errors.As(err, &verr):
		return verr
	case errors.As(err, &cerr):
		return compiler.ValidationError{Field: cerr.Field, Message: cerr.Message, Code: ErrCodeCompile}
	case errors.As(err, &serr):
		return compiler.ValidationError{Field: serr.Column, Message: serr.Message, Code: string(serr.Code)}
	case errors.As(err, &ierr):
		return compiler.ValidationError{Field: ierr.Column, Message: ierr.Message, Code: string(ierr.Code)}
	}
	return compiler.ValidationError{Message: err.Error(), Code: ErrCodeGeneric}
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult, withData bool) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Schema valid (%s)\n", result.Dataset)
	if withData {
		fmt.Fprintf(formatter.Writer, "✓ Data valid (%d rows)\n", result.Rows)
	}
	return nil
}

// outputValidationErrors outputs validation failures and returns the
// matching ExitError.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	if formatter.Format == "json" {
		result := ValidationResult{
			Valid:  false,
			Errors: errs,
		}

		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Field != "" {
			fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
		} else {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
		}
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
