package client

import (
	"errors"
	"fmt"
)

// Kind classifies a client failure.
type Kind string

const (
	// KindUnauthenticated means no session credential was available.
	KindUnauthenticated Kind = "unauthenticated"
	// KindInvalidResponse means the backend answered with a body that does
	// not match the expected envelope or payload shape.
	KindInvalidResponse Kind = "invalid_response_shape"
	// KindRequestFailed means a non-2xx status or an explicit success:false.
	KindRequestFailed Kind = "api_request_failed"
	// KindTransport means the request never produced an HTTP response.
	KindTransport Kind = "transport_failure"
	// KindInvalidRequest means an outbound body failed validation and was not sent.
	KindInvalidRequest Kind = "invalid_request"
)

// Error is the single error type returned by every client call.
type Error struct {
	Kind    Kind
	Message string
	Status  int    // HTTP status, 0 when no response was received
	Code    string // machine code supplied by the backend, if any

	cause error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the *schema.ValidationError behind invalid shapes and
// requests. Transport faults keep only their message.
func (e *Error) Unwrap() error {
	return e.cause
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Kind
	}
	return ""
}

// IsKind returns true if err (or any wrapped error) is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return kind != "" && KindOf(err) == kind
}

// IsStatus returns true if err (or any wrapped error) is an *Error with the given status code.
func IsStatus(err error, code int) bool {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Status == code
	}
	return false
}
