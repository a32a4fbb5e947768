package client

import (
	"errors"
	"fmt"
	"net/http"
)

// maxErrBodySize caps the amount of response body read when
// building an error for an unexpected status code. This prevents
// unbounded memory usage when a large response arrives with a
// wrong status.
const maxErrBodySize = 4 << 10 // 4KB

// maxDrainSize caps how much of a discarded body is read so the
// connection can be reused. Larger bodies are closed instead.
const maxDrainSize = 256 << 10 // 256KB

var (
	// ErrTransport wraps connection, DNS, protocol and request-body
	// failures reported by the underlying transport.
	ErrTransport = errors.New("transport error")

	// ErrTimeout is the cause of a request whose response headers did not
	// arrive before the configured timeout. It is always wrapped in a
	// [StatusError] carrying [http.StatusRequestTimeout].
	ErrTimeout = errors.New("Request Time-out") //nolint:staticcheck // matches the HTTP reason phrase

	// ErrDecode is returned when a response body cannot be decompressed,
	// transcoded or parsed.
	ErrDecode = errors.New("decode error")

	// ErrEncode is returned when a request body cannot be serialised for
	// the configured content type.
	ErrEncode = errors.New("encode error")

	// ErrBodyConsumed is returned by a second attempt to read a response body.
	ErrBodyConsumed = errors.New("response body already consumed")

	// ErrInvalidRequest wraps builder errors recorded before execution.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUnexpectedStatusCode is the sentinel error wrapped by [UnexpectedStatusError].
	ErrUnexpectedStatusCode = errors.New("unexpected status code")

	// ErrAuthFailure is joined with [ErrUnexpectedStatusCode] when the server
	// responds with 401 Unauthorized or 403 Forbidden.
	ErrAuthFailure = errors.New("auth failure")
)

// StatusError is an error carrying HTTP status semantics that was raised
// locally rather than by the server.
type StatusError struct {
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	return e.Err.Error()
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

func newTimeoutError() *StatusError {
	return &StatusError{StatusCode: http.StatusRequestTimeout, Err: ErrTimeout}
}

// UnexpectedStatusError is returned by [Response.Expect] when the
// HTTP response status code does not match any expected value.
type UnexpectedStatusError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("%v: %d, body: %s", e.Err, e.StatusCode, e.Body)
}

func (e *UnexpectedStatusError) Unwrap() error {
	return e.Err
}
