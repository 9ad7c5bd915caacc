package models

import "fmt"

// ErrorKind classifies a failed transport call. The taxonomy is closed:
// every failure is normalized into one of these kinds before it reaches
// the decision layer.
type ErrorKind string

const (
	ErrKindAuthFailed         ErrorKind = "auth_failed"
	ErrKindForbidden          ErrorKind = "forbidden"
	ErrKindNotFound           ErrorKind = "not_found"
	ErrKindRateLimited        ErrorKind = "rate_limited"
	ErrKindServerError        ErrorKind = "server_error"
	ErrKindBadGateway         ErrorKind = "bad_gateway"
	ErrKindServiceUnavailable ErrorKind = "service_unavailable"
	ErrKindNetworkError       ErrorKind = "network_error"
	ErrKindUnknown            ErrorKind = "unknown"
)

// ClassifyStatus maps an HTTP status code to an ErrorKind.
// The mapping is total: codes outside the table map to ErrKindUnknown.
func ClassifyStatus(statusCode int) ErrorKind {
	switch statusCode {
	case 401:
		return ErrKindAuthFailed
	case 403:
		return ErrKindForbidden
	case 404:
		return ErrKindNotFound
	case 429:
		return ErrKindRateLimited
	case 500:
		return ErrKindServerError
	case 502:
		return ErrKindBadGateway
	case 503:
		return ErrKindServiceUnavailable
	default:
		return ErrKindUnknown
	}
}

// GatewayError is the internal error type carrying an ErrorKind and the
// HTTP status code of the failed call (0 when no response was received).
// It implements the error interface and supports error wrapping via Unwrap.
type GatewayError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	// Retries counts the attempts made beyond the first before giving up.
	Retries int
	Err     error // wrapped original error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NewGatewayError creates a new GatewayError.
func NewGatewayError(kind ErrorKind, statusCode int, message string, err error) *GatewayError {
	return &GatewayError{Kind: kind, StatusCode: statusCode, Message: message, Err: err}
}
