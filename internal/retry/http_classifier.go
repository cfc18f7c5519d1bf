package retry

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/miqalab/miqa/pkg/miqa"
)

// StatusError is returned by catalog clients when a remote endpoint answers
// with a non-2xx status. It carries the status code so the classifier can
// distinguish throttling and server hiccups from permanent failures.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request to %s failed with status %d", e.URL, e.StatusCode)
}

// HTTPErrorClassifier implements ErrorClassifier for catalog HTTP requests.
//
// Retryable: 429 (NCBI rate limiting), 5xx, and transport-level failures
// (DNS, connection reset, timeouts). Everything else — notably 4xx — is
// permanent: retrying a 404 on a malformed accession only burns the
// rate-limit budget.
type HTTPErrorClassifier struct{}

// NewHTTPErrorClassifier creates a new HTTP error classifier.
func NewHTTPErrorClassifier() *HTTPErrorClassifier {
	return &HTTPErrorClassifier{}
}

// IsTransient determines if an error is temporary and retryable.
func (c *HTTPErrorClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		code := statusErr.StatusCode
		return code == 429 || (code >= 500 && code <= 599)
	}

	// url.Error wraps transport failures from http.Client
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() || urlErr.Temporary() {
			return true
		}
		err = urlErr.Err
	}

	if isNetworkError(err) {
		return true
	}

	return isConnectionError(err)
}

// Verify classifier implements the interface at compile time
var _ miqa.ErrorClassifier = (*HTTPErrorClassifier)(nil)
