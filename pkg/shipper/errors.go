package shipper

import (
	"errors"
	"fmt"
)

// Error codes carried by ShipperError.
const (
	CodeAuth           = "AUTH_ERROR"
	CodeTransport      = "TRANSPORT_ERROR"
	CodeAPI            = "API_ERROR"
	CodeNoMatchingRate = "NO_MATCHING_RATE"
	CodeInvalidRequest = "INVALID_REQUEST"
)

// Sentinel errors for common shipping scenarios.
var (
	// ErrAuthenticationFailed indicates the carrier rejected our credentials
	// or the token endpoint could not be reached.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrTransport indicates a connectivity failure or timeout.
	ErrTransport = errors.New("carrier unreachable")

	// ErrCarrierRejected indicates the carrier answered with a non-2xx status
	// or a body we could not decode.
	ErrCarrierRejected = errors.New("carrier rejected request")

	// ErrNoMatchingRate indicates no rated shipment matched the requested service code.
	ErrNoMatchingRate = errors.New("no matching rate")

	// ErrInvalidRequest indicates the caller's request is incomplete.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrCarrierNotFound indicates the requested carrier is not registered.
	ErrCarrierNotFound = errors.New("carrier not found")
)

var sentinelByCode = map[string]error{
	CodeAuth:           ErrAuthenticationFailed,
	CodeTransport:      ErrTransport,
	CodeAPI:            ErrCarrierRejected,
	CodeNoMatchingRate: ErrNoMatchingRate,
	CodeInvalidRequest: ErrInvalidRequest,
}

// ShipperError represents an error from a shipping carrier.
type ShipperError struct {
	Carrier    string
	Code       string
	Message    string
	StatusCode int
	Retryable  bool
	Cause      error
}

// Error implements the error interface.
func (e *ShipperError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error (%s): %s: %v", e.Carrier, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error (%s): %s", e.Carrier, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ShipperError) Unwrap() error {
	return e.Cause
}

// Is matches another ShipperError with the same code, or the sentinel
// registered for this error's code.
func (e *ShipperError) Is(target error) bool {
	if t, ok := target.(*ShipperError); ok {
		return e.Code == t.Code
	}
	sentinel, ok := sentinelByCode[e.Code]
	return ok && sentinel == target
}

// NewShipperError creates a new ShipperError.
func NewShipperError(carrier, code, message string) *ShipperError {
	return &ShipperError{
		Carrier: carrier,
		Code:    code,
		Message: message,
	}
}

// WithCause adds a cause to the error.
func (e *ShipperError) WithCause(err error) *ShipperError {
	e.Cause = err
	return e
}

// WithStatusCode adds an HTTP status code to the error.
func (e *ShipperError) WithStatusCode(code int) *ShipperError {
	e.StatusCode = code
	return e
}

// WithRetryable marks the error as retryable.
func (e *ShipperError) WithRetryable(retryable bool) *ShipperError {
	e.Retryable = retryable
	return e
}

// IsRetryable reports whether a caller could reasonably try again.
// Nothing in this module retries on its own.
func IsRetryable(err error) bool {
	var shipperErr *ShipperError
	if errors.As(err, &shipperErr) {
		return shipperErr.Retryable
	}
	return errors.Is(err, ErrTransport)
}
