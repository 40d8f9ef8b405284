package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an API error by how the caller should react to it.
type Kind string

const (
	// KindValidation covers 4xx responses other than 401: the input was bad and
	// the backend's message should be shown to the user verbatim.
	KindValidation Kind = "VALIDATION"
	// KindAuthentication covers 401 responses. In addition to being surfaced,
	// a 401 triggers the global session invalidation side effect.
	KindAuthentication Kind = "AUTHENTICATION"
	// KindServer covers 5xx responses.
	KindServer Kind = "SERVER"
	// KindTransport covers failures where no response was obtained at all
	// (timeout, DNS, connection refused).
	KindTransport Kind = "TRANSPORT"
)

// APIError is the error type returned by the transport and everything riding it.
type APIError struct {
	Kind    Kind
	Status  int // HTTP status code, 0 when no response was obtained
	Message string
	Cause   error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause
func (e *APIError) Unwrap() error {
	return e.Cause
}

// New creates a new APIError
func New(kind Kind, status int, message string, cause error) *APIError {
	return &APIError{
		Kind:    kind,
		Status:  status,
		Message: message,
		Cause:   cause,
	}
}

// FromStatus classifies a non-2xx response. The body is carried verbatim as the
// message so validation failures reach the user unmodified.
func FromStatus(status int, body string) *APIError {
	switch {
	case status == http.StatusUnauthorized:
		return New(KindAuthentication, status, "credential rejected", nil)
	case status >= 400 && status < 500:
		return New(KindValidation, status, body, nil)
	default:
		return New(KindServer, status, body, nil)
	}
}

// Transport wraps a failure to obtain any response.
func Transport(cause error) *APIError {
	return New(KindTransport, 0, "request failed", cause)
}

// KindOf returns the kind of err, or the empty Kind for non-API errors.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// IsAuthentication reports whether err is a 401 rejection.
func IsAuthentication(err error) bool {
	return KindOf(err) == KindAuthentication
}

// IsValidation reports whether err is a non-401 4xx rejection.
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

// IsServer reports whether err is a 5xx response.
func IsServer(err error) bool {
	return KindOf(err) == KindServer
}

// IsTransport reports whether err means no response was obtained.
func IsTransport(err error) bool {
	return KindOf(err) == KindTransport
}

// HTTPStatus returns the status to use when relaying err to a console client.
func HTTPStatus(err error) int {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return http.StatusInternalServerError
	}
	switch apiErr.Kind {
	case KindValidation:
		if apiErr.Status > 0 {
			return apiErr.Status
		}
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindServer:
		return http.StatusBadGateway
	case KindTransport:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
