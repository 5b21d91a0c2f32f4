package service

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrNoActiveCase       = errors.New("no active case")
	ErrNotViewing         = errors.New("no question is being viewed")
	ErrAtFirstQuestion    = errors.New("already at the first question")
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	ErrTabNotFound        = errors.New("tab not found")
)

// ValidationError is an empty or unusable answer. Recovered locally by re-prompting.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NetworkError is a transport failure, timeout or malformed response body
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// BackendError is an {"error": ...} payload or a non-success status from the backend
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	return e.Message
}

// SubmissionError wraps the NetworkError or BackendError of a failed submission
type SubmissionError struct {
	CaseID string
	Err    error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submit case %q: %v", e.CaseID, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// noticeFor turns an error into the message shown to the learner.
// Backend messages are surfaced verbatim.
func noticeFor(err error, fallback string) string {
	var be *BackendError
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return fallback
}
