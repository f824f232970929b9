// internal/github/errors.go
//
// API error type and status predicates.  The publish pipeline reads
// several failures as normal workflow branches (a 404 repo lookup means
// "create it", a 422 on file creation means a concurrent writer won), so
// the status code must survive the error chain.
package github

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// APIError carries the HTTP status and GitHub's message for a failed call.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("github: %s %s: HTTP %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("github: %s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// newAPIError drains the response body for GitHub's {"message": ...}
// envelope.  Bodies that are not JSON are ignored; the status code alone
// is enough for the pipeline to act.
func newAPIError(method, path string, resp *http.Response) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Method:     method,
		Path:       path,
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil {
		var envelope struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &envelope) == nil {
			apiErr.Message = envelope.Message
		}
	}
	return apiErr
}

// statusIs reports whether err is an APIError with the given status.
func statusIs(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// IsNotFound reports an HTTP 404 from the API.
func IsNotFound(err error) bool { return statusIs(err, http.StatusNotFound) }

// IsConflict reports an HTTP 409 from the API.
func IsConflict(err error) bool { return statusIs(err, http.StatusConflict) }

// IsUnprocessable reports an HTTP 422 from the API.
func IsUnprocessable(err error) bool { return statusIs(err, http.StatusUnprocessableEntity) }

// IsUnauthorized reports an HTTP 401 from the API.
func IsUnauthorized(err error) bool { return statusIs(err, http.StatusUnauthorized) }
