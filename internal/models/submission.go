package models

// SubmissionState represents where a user creation request is in its lifecycle
type SubmissionState string

const (
	SubmissionIdle       SubmissionState = "idle"
	SubmissionSubmitting SubmissionState = "submitting"
	SubmissionSucceeded  SubmissionState = "success"
	SubmissionFailed     SubmissionState = "failure"
)

// Submission is the last known submission status for a session
type Submission struct {
	State SubmissionState `json:"state"`
	Error string          `json:"error,omitempty"`
}

// CreateUserRequest is the JSON body for creating a user through the API.
// ProfilePhoto carries a data URI or URL.
type CreateUserRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	ProfilePhoto string `json:"profilePhoto"`
}
