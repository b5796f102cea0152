package jsbridge

import (
	"errors"
	"fmt"
)

// Standard errors.
var (
	// ErrClosed is returned by operations on a bridge that has been closed.
	ErrClosed = errors.New("jsbridge: bridge is closed")

	// ErrNoTransport is returned when the environment exposes neither a
	// push target nor a document, at the time of an emission.
	ErrNoTransport = errors.New("jsbridge: no outbound transport available")

	// ErrReservedEvent is returned when application code attempts to
	// subscribe to, or emit, the reserved response event.
	ErrReservedEvent = errors.New("jsbridge: event name is reserved")
)

// NotFoundError indicates that a function path did not resolve to a
// callable value.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("jsbridge: function not found: %q", e.Path)
}

// PanicError wraps a value recovered from a panicking [Callable].
type PanicError struct {
	Value any
}

func (e PanicError) Error() string {
	return fmt.Sprintf("jsbridge: call panicked: %v", e.Value)
}

// Unwrap returns the recovered value if it was an error.
func (e PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
