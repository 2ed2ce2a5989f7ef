package harness

import "github.com/stratalab/strata/internal/report"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if the run matched every expectation.
	Pass bool `json:"pass"`

	// Errors contains expectation failure messages in evaluation order.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// RunID is the pinned run identifier. Empty when the run aborted.
	RunID string `json:"run_id,omitempty"`

	// Report is the full account of the run, used for golden comparison.
	// Nil when the run aborted.
	Report *report.Report `json:"report,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds an expectation failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
