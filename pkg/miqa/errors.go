package miqa

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	err := service.Crawl(ctx, config)
//	if errors.Is(err, miqa.ErrFetchFailed) {
//	    // Handle a catalog that could not be reached
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrFetchFailed indicates a remote catalog request failed.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrMalformedResponse indicates a remote catalog returned a payload
	// that could not be parsed (XML, JSON, SOFT, SDRF, or HTML listing).
	ErrMalformedResponse = errors.New("malformed response")

	// ErrStudyNotFound indicates the requested study accession does not exist
	// in the remote catalog.
	ErrStudyNotFound = errors.New("study not found")

	// ErrApprovalDenied indicates the user denied approval for a destructive
	// operation (schema reset).
	ErrApprovalDenied = errors.New("approval denied")

	// ErrUploadFailed indicates an object storage operation failed.
	ErrUploadFailed = errors.New("upload failed")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported auth method")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Check for sentinel errors
	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrApprovalDenied):
		return ExitApprovalDenied
	case errors.Is(err, ErrMalformedResponse):
		return ExitMalformedResponse
	case errors.Is(err, ErrFetchFailed), errors.Is(err, ErrStudyNotFound):
		return ExitFetchFailed
	case errors.Is(err, ErrUploadFailed):
		return ExitStorageFailed
	case errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	}

	// Check for common connection error patterns
	errStr := err.Error()
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
