package operations

import (
	"fmt"
	"strings"
)

// StepFailure pairs a failed step with its error
type StepFailure struct {
	StepID string
	Err    error
}

// RunError reports every step that failed during a run
type RunError struct {
	Failures []StepFailure
}

// Error implements the error interface
func (e *RunError) Error() string {
	if e == nil || len(e.Failures) == 0 {
		return "figure run failed"
	}
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.StepID, f.Err))
	}
	return fmt.Sprintf("%d figure(s) failed: %s", len(e.Failures), strings.Join(parts, "; "))
}

// Unwrap exposes the step errors to errors.Is and errors.As
func (e *RunError) Unwrap() []error {
	if e == nil {
		return nil
	}
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}
