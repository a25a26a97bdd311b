package crm

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the CRM. Status is preserved so callers
// can map upstream failures onto their own responses.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("crm api error (%d): %s", e.Status, e.Message)
}

func newAPIError(status int, body string) *APIError {
	msg := fmt.Sprintf("upstream returned %d: %s", status, body)
	switch status {
	case http.StatusUnauthorized:
		msg = "authentication failed, check the API token"
	case http.StatusForbidden:
		msg = "permission denied, the API token may not have access to this resource"
	case http.StatusNotFound:
		msg = "resource not found"
	case http.StatusTooManyRequests:
		msg = "rate limit exceeded, try again in a few moments"
	}
	return &APIError{Status: status, Message: msg}
}

// IsRateLimited reports whether err is an upstream 429. Rate limits are
// surfaced to the caller, never retried.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusTooManyRequests
}

// IsAuthError reports whether err is an upstream 401 or 403.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
}

// StatusOf returns the upstream status carried by err, or 502 when err is not
// an APIError.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return http.StatusBadGateway
}
