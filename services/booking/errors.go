package booking

import (
	"errors"
	"fmt"
)

var (
	ErrWorkflowClosed         = errors.New("booking workflow is closed")
	ErrNoPreviousStep         = errors.New("no previous step")
	ErrConfirmationInProgress = errors.New("confirmation already running for appointment")
	ErrUnknownStylist         = errors.New("stylist is not in the current results")
	ErrSessionNotFound        = errors.New("booking session not found")
	ErrStepNotAllowed         = errors.New("operation not allowed in current step")
)

// ValidationError blocks a step transition; Field names the missing or invalid draft field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// SearchFailure wraps an error from the stylist search collaborator.
type SearchFailure struct {
	Err error
}

func (e *SearchFailure) Error() string { return "stylist search failed: " + e.Err.Error() }
func (e *SearchFailure) Unwrap() error { return e.Err }

// SubmissionFailure wraps an error from the appointment collaborator.
type SubmissionFailure struct {
	Err error
}

func (e *SubmissionFailure) Error() string { return "appointment submission failed: " + e.Err.Error() }
func (e *SubmissionFailure) Unwrap() error { return e.Err }
