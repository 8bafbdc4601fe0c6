package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/user-directory-api/internal/service"
	"github.com/user-directory-api/internal/spreadsheet"
	"github.com/user-directory-api/internal/validation"
)

// User-facing messages
const (
	msgUserAdded        = "User added successfully!"
	msgUsersImported    = "Users imported successfully!"
	msgInvalidFileKind  = "Please upload a valid Excel or CSV file"
	msgImportInProgress = "An import is already in progress"
	msgSubmitInProgress = "A submission is already in progress"
	msgTooLarge         = "File is too large"
	msgUserNotFound     = "User not found"
	msgExportTooLarge   = "A user record is too large to export"
	msgInternal         = "Internal server error"
)

var notices = map[string]string{
	"added":    msgUserAdded,
	"imported": msgUsersImported,
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, spreadsheet.ErrInvalidFileKind):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, spreadsheet.ErrParse), errors.Is(err, validation.ErrValidation),
		errors.Is(err, spreadsheet.ErrCellTooLong):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrSubmissionInProgress), errors.Is(err, service.ErrImportInProgress):
		return http.StatusConflict
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSubmission):
		return http.StatusBadGateway
	case isTooLarge(err):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the notification shown to the user for err
func messageFor(err error) string {
	switch {
	case errors.Is(err, spreadsheet.ErrInvalidFileKind):
		return msgInvalidFileKind
	case errors.Is(err, spreadsheet.ErrParse):
		return service.ImportErrorMessage
	case errors.Is(err, spreadsheet.ErrCellTooLong):
		return msgExportTooLarge
	case errors.Is(err, service.ErrSubmissionInProgress):
		return msgSubmitInProgress
	case errors.Is(err, service.ErrImportInProgress):
		return msgImportInProgress
	case errors.Is(err, service.ErrUserNotFound):
		return msgUserNotFound
	case errors.Is(err, service.ErrSubmission):
		return service.SubmissionErrorMessage
	case isTooLarge(err):
		return msgTooLarge
	}

	var verrs *validation.Errors
	if errors.As(err, &verrs) {
		return verrs.Error()
	}
	return msgInternal
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "request body too large")
}
