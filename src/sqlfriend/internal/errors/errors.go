package errors

import stderr "errors"

// New returns an error that formats as the given text.
// Each call to New returns a distinct error value even if the text is identical.
func New(msg string) error {
	return stderr.New(msg)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return stderr.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return stderr.As(err, target)
}

var (
	// ErrChannelClosed reports that a session's outbound or inbound channel is gone.
	ErrChannelClosed = New("session channel closed")
	// ErrNoSession reports that no language server session is attached.
	ErrNoSession = New("no language server session running")
)

// IsSessionFatal reports whether the error ends the session it occurred in.
// Timeouts, handshake failures and malformed inbound messages stay local to the caller.
func IsSessionFatal(e error) bool {
	var fe *FramingError
	return stderr.As(e, &fe) || stderr.Is(e, ErrChannelClosed)
}
