package preprocess

import (
	"errors"
	"fmt"
)

// DivideByZeroError reports a continuous column whose training partition has
// zero variance: standardization would divide by zero and flood the output
// with NaN/Inf. Fit fails instead, unless the caller opts into
// pass-through handling via WithZeroVariance.
type DivideByZeroError struct {
	// Column names the degenerate column.
	Column string

	// TrainRows is the size of the training partition the fit saw.
	TrainRows int
}

// Error implements the error interface.
func (e *DivideByZeroError) Error() string {
	return fmt.Sprintf("ZERO_VARIANCE: column %q is constant across %d training row(s); standardization would divide by zero",
		e.Column, e.TrainRows)
}

// IsDivideByZeroError returns true if err is a DivideByZeroError.
// Uses errors.As to handle wrapped errors.
func IsDivideByZeroError(err error) bool {
	var de *DivideByZeroError
	return errors.As(err, &de)
}
