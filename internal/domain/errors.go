package domain

import "fmt"

// ValidationError reports malformed or inconsistent caller input.
// It always names the offending field; inputs are never auto-corrected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a field-level validation error.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// OptimizationFailureError reports that the solver exhausted its iteration
// budget without converging. Distinct from ValidationError: the inputs were
// individually valid but numerically pathological.
type OptimizationFailureError struct {
	Iterations int
	Reason     string
}

func (e *OptimizationFailureError) Error() string {
	return fmt.Sprintf("optimization did not converge after %d iterations: %s", e.Iterations, e.Reason)
}
