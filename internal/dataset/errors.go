package dataset

import (
	"errors"
	"fmt"
)

// IntegrityError reports data that violates a schema invariant.
//
// Integrity violations include:
//   - Missing values: a cell parsed to NaN (the source data must be fully
//     populated; loaders surface per-column counts alongside this error)
//   - Binary domain: a binary column holds a value other than 0 or 1
//   - Bound violation: a continuous column falls below its declared minimum
//   - Shape mismatch: column lengths disagree or columns are missing
//
// IntegrityError includes structured fields for diagnostics; the computation
// is deterministic, so these errors are never retried.
type IntegrityError struct {
	// Code identifies the violation category.
	Code IntegrityErrorCode

	// Message is a human-readable description.
	Message string

	// Column names the offending column, when one is identifiable.
	Column string

	// Row is the 0-based data row index, or -1 when not row-specific.
	Row int

	// Missing carries per-column missing-cell counts for MISSING_VALUE
	// errors, so callers can report them without re-scanning.
	Missing map[string]int
}

// IntegrityErrorCode categorizes integrity violations.
type IntegrityErrorCode string

const (
	// ErrCodeMissingValue indicates NaN cells in a fully-populated dataset.
	ErrCodeMissingValue IntegrityErrorCode = "MISSING_VALUE"

	// ErrCodeBinaryDomain indicates a binary column value outside {0,1}.
	ErrCodeBinaryDomain IntegrityErrorCode = "BINARY_DOMAIN"

	// ErrCodeBoundViolation indicates a continuous value below the column minimum.
	ErrCodeBoundViolation IntegrityErrorCode = "BOUND_VIOLATION"

	// ErrCodeShapeMismatch indicates column count or length disagreement.
	ErrCodeShapeMismatch IntegrityErrorCode = "SHAPE_MISMATCH"

	// ErrCodeNonFinite indicates an Inf value (NaN is MISSING_VALUE).
	ErrCodeNonFinite IntegrityErrorCode = "NON_FINITE"
)

// Error implements the error interface.
func (e *IntegrityError) Error() string {
	switch {
	case e.Column != "" && e.Row >= 0:
		return fmt.Sprintf("%s: %s (column=%s, row=%d)", e.Code, e.Message, e.Column, e.Row)
	case e.Column != "":
		return fmt.Sprintf("%s: %s (column=%s)", e.Code, e.Message, e.Column)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsIntegrityError returns true if err is an IntegrityError with the given
// code. Uses errors.As to handle wrapped errors.
func IsIntegrityError(err error, code IntegrityErrorCode) bool {
	var ie *IntegrityError
	if errors.As(err, &ie) {
		return ie.Code == code
	}
	return false
}

// NewMissingValueError creates an IntegrityError carrying per-column
// missing-cell counts.
func NewMissingValueError(missing map[string]int, total int) *IntegrityError {
	return &IntegrityError{
		Code:    ErrCodeMissingValue,
		Message: fmt.Sprintf("dataset has %d missing cell(s); schema requires full population", total),
		Row:     -1,
		Missing: missing,
	}
}
