// ABOUTME: Typed errors for storefront API operations.
// ABOUTME: Enables programmatic error handling with errors.Is() and errors.As().
package shop

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic handling.
var (
	ErrNoToken        = errors.New("no auth token")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotFound       = errors.New("not found")
	ErrNetworkFailure = errors.New("network failure")
	ErrServerError    = errors.New("server error")
)

// APIError carries the HTTP status and server-supplied message of a
// failed request.
type APIError struct {
	Status  int    // HTTP status code
	Message string // message extracted from the response body, if any
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// Is maps status classes onto sentinel errors.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == 401 || e.Status == 403
	case ErrNotFound:
		return e.Status == 404
	case ErrServerError:
		return e.Status >= 500
	}
	return false
}

// OpError wraps errors with operation context.
type OpError struct {
	Op      string // "cart.refresh", "favorites.toggle", ...
	Err     error  // underlying typed error
	Retries int    // attempts made
}

func (e *OpError) Error() string {
	if e.Retries > 1 {
		return fmt.Sprintf("%s failed after %d attempts: %v", e.Op, e.Retries, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}
