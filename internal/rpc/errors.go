package rpc

import (
	"errors"
	"fmt"
)

// ErrClosed is the cause of a TransportError on a client that was closed.
var ErrClosed = errors.New("connection closed")

// InvocationError reports a call the node completed but rejected, or whose
// result could not be decoded (Code is CodeParseError). The connection
// remains usable.
type InvocationError struct {
	Method  string
	Flow    string
	Code    int
	Message string
}

func (e *InvocationError) Error() string {
	if e.Flow != "" {
		return fmt.Sprintf("flow %s failed (code %d): %s", e.Flow, e.Code, e.Message)
	}
	return fmt.Sprintf("%s failed (code %d): %s", e.Method, e.Code, e.Message)
}

// TransportError reports that the connection cannot carry calls.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("rpc transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err wraps a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
