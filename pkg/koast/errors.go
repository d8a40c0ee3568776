package koast

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ============================================================================
// Registry Errors
// ============================================================================

// DuplicateEndpointError reports an attempt to register a handle that is
// already present in the registry. Registration is programmer-driven setup,
// so this fails loudly and is never retried.
type DuplicateEndpointError struct {
	// Handle is the endpoint handle that was already registered
	Handle string
}

// Error implements the error interface.
func (e *DuplicateEndpointError) Error() string {
	return fmt.Sprintf("koast: an endpoint with this handle was already defined: %s", e.Handle)
}

// UnknownEndpointError reports a lookup of a handle that was never registered.
type UnknownEndpointError struct {
	// Handle is the endpoint handle that was requested
	Handle string
}

// Error implements the error interface.
func (e *UnknownEndpointError) Error() string {
	return fmt.Sprintf("koast: unknown endpoint: %s", e.Handle)
}

// MissingParameterError reports the first URL template placeholder that could
// not be substituted. A nil value or an empty string counts as missing; a
// numeric zero does not.
type MissingParameterError struct {
	// Name is the placeholder name that had no usable value
	Name string
}

// Error implements the error interface.
func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("koast: missing parameter: %s", e.Name)
}

// ============================================================================
// Transport Errors
// ============================================================================

// TransportError represents a failed network call. It carries the server's
// error payload verbatim so callers can decide how to interpret it. The SDK
// never retries; retry policy is the caller's concern (see RetryTransport).
type TransportError struct {
	// StatusCode is the HTTP status code of the failed response, or zero if
	// the request never produced a response.
	StatusCode int

	// Payload is the raw response body, unmodified.
	Payload json.RawMessage

	// Err is the underlying transport failure when the request never
	// produced a response.
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("koast: transport error: %v", e.Err)
	}
	body := string(e.Payload)
	if len(body) > 256 {
		body = body[:256] + "..."
	}
	return fmt.Sprintf("koast: transport error: HTTP %d %s: %s",
		e.StatusCode, http.StatusText(e.StatusCode), body)
}

// Unwrap exposes the underlying transport failure, if any.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// LogoutError reports that the server responded to a logout request without
// the expected "Ok" acknowledgement.
type LogoutError struct {
	// Body is the acknowledgement body the server returned instead of "Ok"
	Body string
}

// Error implements the error interface.
func (e *LogoutError) Error() string {
	return fmt.Sprintf("koast: failed to logout: unexpected acknowledgement %q", e.Body)
}
