package errors

import (
	"fmt"
	"time"
)

// FramingError indicates that the server's output stream could not be split into messages.
type FramingError struct {
	Reason string
	Err    error
}

// Error is an implementation of the error interface.
func (n *FramingError) Error() string {
	if n.Err != nil {
		return fmt.Sprintf("framing: %s: %v", n.Reason, n.Err)
	}
	return fmt.Sprintf("framing: %s", n.Reason)
}

// Unwrap returns the underlying I/O error, if any.
func (n *FramingError) Unwrap() error { return n.Err }

// ProcessSpawnError indicates that the language server executable could not be started.
type ProcessSpawnError struct {
	Command string
	Err     error
}

// Error is an implementation of the error interface.
func (n *ProcessSpawnError) Error() string {
	return fmt.Sprintf("failed to spawn language server `%s`: %v", n.Command, n.Err)
}

// Unwrap returns the underlying spawn error.
func (n *ProcessSpawnError) Unwrap() error { return n.Err }

// RequestTimeoutError indicates that no response arrived for a request within the allowed time.
type RequestTimeoutError struct {
	Method  string
	Timeout time.Duration
}

// Error is an implementation of the error interface.
func (n *RequestTimeoutError) Error() string {
	return fmt.Sprintf("request %q timed out after %s", n.Method, n.Timeout)
}

// MalformedMessageError indicates an inbound body that is neither a response nor a notification.
type MalformedMessageError struct {
	Body []byte
	Err  error
}

// Error is an implementation of the error interface.
func (n *MalformedMessageError) Error() string {
	return fmt.Sprintf("failed to deserialize server message %q: %v", n.Body, n.Err)
}

// Unwrap returns the decoding error.
func (n *MalformedMessageError) Unwrap() error { return n.Err }

// HandshakeError indicates that a step of the initialization sequence failed.
type HandshakeError struct {
	Step string
	Err  error
}

// Error is an implementation of the error interface.
func (n *HandshakeError) Error() string {
	return fmt.Sprintf("handshake step %q failed: %v", n.Step, n.Err)
}

// Unwrap returns the failure of the step.
func (n *HandshakeError) Unwrap() error { return n.Err }

// TaskPanicError indicates that a supervised task panicked.
type TaskPanicError struct {
	Task  string
	Value interface{}
	Stack []byte
}

// Error is an implementation of the error interface.
func (n *TaskPanicError) Error() string {
	return fmt.Sprintf("task %q panicked: %v", n.Task, n.Value)
}

// CompletionParseError indicates a completion result matching none of the accepted shapes.
type CompletionParseError struct {
	Result []byte
}

// Error is an implementation of the error interface.
func (n *CompletionParseError) Error() string {
	return fmt.Sprintf("unrecognized completion result: %s", n.Result)
}

// ConnectionNotFoundError indicates that no configured connection has the given name.
type ConnectionNotFoundError struct {
	Name string
}

// Error is an implementation of the error interface.
func (n *ConnectionNotFoundError) Error() string {
	return fmt.Sprintf("connection %q doesn't exist", n.Name)
}
