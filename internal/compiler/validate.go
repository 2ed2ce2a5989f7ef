package compiler

import (
	"fmt"
	"strings"

	"github.com/stratalab/strata/internal/dataset"
)

// Validation error codes (E100-E199)
const (
	ErrSchemaNameEmpty = "E101" // schema name is required
	ErrNoColumns       = "E102" // at least one column required
	ErrNoLabel         = "E103" // label is required
	ErrUnknownLabel    = "E104" // label names no declared column
	ErrLabelNotBinary  = "E105" // label column must be binary
	ErrInvalidKind     = "E106" // column kind must be continuous or binary
	ErrDuplicateColumn = "E107" // duplicate column name or CSV header
	ErrUnknownExclude  = "E108" // exclude names no declared column
	ErrExcludedLabel   = "E109" // the label cannot be excluded
	ErrBinaryBound     = "E110" // min bound declared on a binary column
	ErrNoFeatures      = "E111" // no feature columns remain after label and exclusions
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled schema against semantic rules.
// Returns all errors found (does not fail-fast).
func Validate(s *dataset.Schema) []ValidationError {
	var errs []ValidationError

	// E101: name is required
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "dataset name is required and must be non-empty",
			Code:    ErrSchemaNameEmpty,
		})
	}

	// E102: at least one column required
	if len(s.Columns) == 0 {
		errs = append(errs, ValidationError{
			Field:   "columns",
			Message: "at least one column is required",
			Code:    ErrNoColumns,
		})
	}

	// Track names for duplicate detection. Canonical names and CSV headers
	// share one namespace: a rename that collides with another column's
	// header would make loading ambiguous.
	names := make(map[string]bool)
	headers := make(map[string]bool)
	for i, col := range s.Columns {
		if names[col.Name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("columns[%d].name", i),
				Message: fmt.Sprintf("duplicate column name: %q", col.Name),
				Code:    ErrDuplicateColumn,
			})
		}
		names[col.Name] = true

		if h := col.SourceName(); headers[h] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("columns[%d].csv", i),
				Message: fmt.Sprintf("duplicate CSV header: %q", h),
				Code:    ErrDuplicateColumn,
			})
		} else {
			headers[h] = true
		}

		// E106: kind must be one of the declared kinds
		if !dataset.ValidKinds[col.Kind] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("columns[%d].kind", i),
				Message: fmt.Sprintf("invalid kind %q for column %q, must be %q or %q", col.Kind, col.Name, dataset.KindContinuous, dataset.KindBinary),
				Code:    ErrInvalidKind,
			})
		}

		// E110: binary columns have a fixed {0,1} domain, bounds make no sense
		if col.Kind == dataset.KindBinary && col.Min != nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("columns[%d].min", i),
				Message: fmt.Sprintf("column %q is binary; min bounds apply to continuous columns only", col.Name),
				Code:    ErrBinaryBound,
			})
		}
	}

	// E103: label is required
	if strings.TrimSpace(s.Label) == "" {
		errs = append(errs, ValidationError{
			Field:   "label",
			Message: "label is required and must be non-empty",
			Code:    ErrNoLabel,
		})
	} else {
		// E104: label must name a declared column; E105: it must be binary
		labelCol, ok := s.LabelColumn()
		if !ok {
			errs = append(errs, ValidationError{
				Field:   "label",
				Message: fmt.Sprintf("label %q names no declared column", s.Label),
				Code:    ErrUnknownLabel,
			})
		} else if labelCol.Kind != dataset.KindBinary {
			errs = append(errs, ValidationError{
				Field:   "label",
				Message: fmt.Sprintf("label column %q must be binary, got %q", s.Label, labelCol.Kind),
				Code:    ErrLabelNotBinary,
			})
		}
	}

	// E108/E109: every exclusion must name a declared non-label column
	for i, name := range s.Exclude {
		if s.Index(name) < 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("exclude[%d]", i),
				Message: fmt.Sprintf("exclude %q names no declared column", name),
				Code:    ErrUnknownExclude,
			})
			continue
		}
		if name == s.Label {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("exclude[%d]", i),
				Message: fmt.Sprintf("label %q cannot be excluded", name),
				Code:    ErrExcludedLabel,
			})
		}
	}

	// E111: the label and the exclusions must leave at least one feature
	// column, or there is nothing to split and standardize.
	if len(s.Columns) > 0 && len(s.ModelColumns()) == 0 {
		errs = append(errs, ValidationError{
			Field:   "columns",
			Message: "no feature columns remain after the label and exclusions",
			Code:    ErrNoFeatures,
		})
	}

	return errs
}
