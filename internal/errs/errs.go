// Package errs defines the error taxonomy shared across the service:
// validation, scoring, training and upstream failures each map to a
// distinct HTTP status in the handler layer.
package errs

import (
	"fmt"
	"strings"
)

// ValidationError reports invalid user input. Recoverable: the client
// should fix the listed fields and resubmit.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Fields, ", "))
}

// NewValidationError creates a ValidationError for the offending fields.
func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// ScoringError reports malformed derived features (missing or
// non-finite values). The profile itself is still persisted.
type ScoringError struct {
	Reason string
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("scoring failed: %s", e.Reason)
}

// TrainingError reports a bad training batch. The training run is
// aborted and no artifact is produced.
type TrainingError struct {
	Reason string
}

func (e *TrainingError) Error() string {
	return fmt.Sprintf("training failed: %s", e.Reason)
}

// UpstreamError reports a failure of an external collaborator (language
// model API, rates feed). Surfaced to the user as "unavailable".
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s failed: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = fmt.Errorf("not found")
