package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/stratalab/strata/internal/compiler"
	"github.com/stratalab/strata/internal/dataset"
	"github.com/stratalab/strata/internal/ingest"
	"github.com/stratalab/strata/internal/preprocess"
	"github.com/stratalab/strata/internal/split"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Validation/data failure (bad schema, bad data, bad proportions, zero variance)
	ExitCommandError = 2 // Command error (missing files, unwritable output, bad flags)
)

// Command-level error codes. Domain failures carry their own codes
// (MISSING_VALUE, BAD_PROPORTIONS, E1xx, ...); these cover everything else.
const (
	ErrCodeGeneric     = "E001" // generic/unknown error
	ErrCodeCompile     = "E002" // schema failed to compile
	ErrCodeReadFailed  = "E003" // input file could not be read
	ErrCodeNotFound    = "E005" // path not found
	ErrCodeWriteFailed = "E007" // output could not be written

	// ErrCodeZeroVariance is the code for constant training columns; the
	// preprocess error carries it in its message rather than a field.
	ErrCodeZeroVariance = "ZERO_VARIANCE"
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// errorCode maps an error onto its stable code: domain errors carry their
// own (MISSING_VALUE, BAD_PROPORTIONS, E1xx, ...), anything else is generic.
func errorCode(err error) string {
	var (
		verr compiler.ValidationError
		cerr *compiler.CompileError
		serr *ingest.SchemaError
		ierr *dataset.IntegrityError
		perr *split.ConfigurationError
		zerr *preprocess.DivideByZeroError
	)
	switch {
	case errors.As(err, &verr):
		return verr.Code
	case errors.As(err, &cerr):
		return ErrCodeCompile
	case errors.As(err, &serr):
		return string(serr.Code)
	case errors.As(err, &ierr):
		return string(ierr.Code)
	case errors.As(err, &perr):
		return string(perr.Code)
	case errors.As(err, &zerr):
		return ErrCodeZeroVariance
	case errors.Is(err, fs.ErrNotExist):
		return ErrCodeNotFound
	}
	return ErrCodeGeneric
}

// isDataError reports whether err is a domain failure (bad schema or bad
// input data) as opposed to an IO or usage problem. Domain failures exit 1;
// everything else exits 2.
func isDataError(err error) bool {
	var (
		verr compiler.ValidationError
		cerr *compiler.CompileError
		serr *ingest.SchemaError
		ierr *dataset.IntegrityError
		perr *split.ConfigurationError
		zerr *preprocess.DivideByZeroError
	)
	return errors.As(err, &verr) ||
		errors.As(err, &cerr) ||
		errors.As(err, &serr) ||
		errors.As(err, &ierr) ||
		errors.As(err, &perr) ||
		errors.As(err, &zerr)
}

// failureExit reports err in the configured format and returns an ExitError
// with the matching exit code: 1 for domain failures, 2 for everything else.
func failureExit(formatter *OutputFormatter, err error) error {
	code := errorCode(err)
	_ = formatter.Error(code, err.Error(), nil)
	if isDataError(err) {
		return WrapExitError(ExitFailure, code, err)
	}
	return WrapExitError(ExitCommandError, code, err)
}

// commandExit reports err under an explicit command-level code and exits 2.
// Used where the error carries no code of its own, e.g. write failures.
func commandExit(formatter *OutputFormatter, code string, err error) error {
	_ = formatter.Error(code, err.Error(), nil)
	return WrapExitError(ExitCommandError, code, err)
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// newFormatter builds the formatter for a command invocation. Verbose logs
// go to stderr so they never corrupt JSON output.
func newFormatter(opts *RootOptions, out, errOut io.Writer) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    out,
		ErrWriter: errOut,
		Verbose:   opts.Verbose,
	}
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`           // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`   // success payload
	Error  *CLIError   `json:"error,omitempty"`  // error details
	RunID  string      `json:"run_id,omitempty"` // optional run correlation
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // "E001", "MISSING_VALUE", etc.
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
