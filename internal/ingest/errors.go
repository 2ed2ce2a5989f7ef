package ingest

import (
	"errors"
	"fmt"
)

// SchemaError reports CSV input that cannot be matched to a schema: header
// mismatches, empty input, or input the CSV parser rejects outright.
type SchemaError struct {
	// Code identifies the mismatch category.
	Code SchemaErrorCode

	// Message is a human-readable description.
	Message string

	// Column names the offending header, when one is identifiable.
	Column string
}

// SchemaErrorCode categorizes input/schema mismatches.
type SchemaErrorCode string

const (
	// ErrCodeMissingColumn indicates a schema column absent from the CSV header.
	ErrCodeMissingColumn SchemaErrorCode = "MISSING_COLUMN"

	// ErrCodeUnexpectedColumn indicates a CSV header column the schema does not declare.
	ErrCodeUnexpectedColumn SchemaErrorCode = "UNEXPECTED_COLUMN"

	// ErrCodeEmptyInput indicates input with no data rows.
	ErrCodeEmptyInput SchemaErrorCode = "EMPTY_INPUT"

	// ErrCodeMalformedInput indicates input the CSV parser rejected.
	ErrCodeMalformedInput SchemaErrorCode = "MALFORMED_INPUT"
)

// Error implements the error interface.
func (e *SchemaError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s: %s (column=%s)", e.Code, e.Message, e.Column)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsSchemaError returns true if err is a SchemaError with the given code.
// Uses errors.As to handle wrapped errors.
func IsSchemaError(err error, code SchemaErrorCode) bool {
	var se *SchemaError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}
