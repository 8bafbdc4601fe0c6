package service

import "errors"

var (
	// ErrSubmission is wrapped by *SubmissionError
	ErrSubmission = errors.New("submission failed")

	// ErrSubmissionInProgress is returned while a session already has a submission running
	ErrSubmissionInProgress = errors.New("submission already in progress")

	// ErrImportInProgress is returned while a session already has an import running
	ErrImportInProgress = errors.New("import already in progress")

	// ErrUserNotFound is returned when an update targets an unknown id
	ErrUserNotFound = errors.New("user not found")
)

// SubmissionError reports why the creation step failed
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return "failed to add user: " + e.Err.Error()
}

func (e *SubmissionError) Unwrap() []error {
	return []error{ErrSubmission, e.Err}
}
