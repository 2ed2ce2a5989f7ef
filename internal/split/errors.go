package split

import (
	"errors"
	"fmt"
)

// ConfigurationError reports split parameters that cannot produce a valid
// partition.
//
// Configuration errors include:
//   - Bad proportions: a fraction outside (0,1) or a sum away from 1
//   - Empty stratum: a class too small to reach every partition
//
// The computation is deterministic, so these errors are never retried; the
// caller must change the configuration (or the dataset).
type ConfigurationError struct {
	// Code identifies the error category.
	Code ConfigurationErrorCode

	// Message is a human-readable description.
	Message string

	// Class is the affected label value (for EMPTY_STRATUM).
	Class float64

	// Partition names the starved partition (for EMPTY_STRATUM).
	Partition string
}

// ConfigurationErrorCode categorizes configuration errors.
type ConfigurationErrorCode string

const (
	// ErrCodeBadProportions indicates fractions outside (0,1) or a sum != 1.
	ErrCodeBadProportions ConfigurationErrorCode = "BAD_PROPORTIONS"

	// ErrCodeEmptyStratum indicates a class with zero rows in some partition.
	ErrCodeEmptyStratum ConfigurationErrorCode = "EMPTY_STRATUM"
)

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Partition != "" {
		return fmt.Sprintf("%s: %s (class=%v, partition=%s)", e.Code, e.Message, e.Class, e.Partition)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsConfigurationError returns true if err is a ConfigurationError with the
// given code. Uses errors.As to handle wrapped errors.
func IsConfigurationError(err error, code ConfigurationErrorCode) bool {
	var ce *ConfigurationError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// NewEmptyStratumError creates a ConfigurationError for a class whose row
// count cannot populate the named partition.
func NewEmptyStratumError(class float64, partition string, classRows int) *ConfigurationError {
	return &ConfigurationError{
		Code:      ErrCodeEmptyStratum,
		Message:   fmt.Sprintf("class has %d row(s), not enough to populate every partition", classRows),
		Class:     class,
		Partition: partition,
	}
}
