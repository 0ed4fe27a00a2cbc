package smtp

import "errors"

// Sentinel failures of the session state machine. Connection-phase
// failures are fatal to session construction; the per-message failures
// (reset, address, rejection) leave the session usable after another
// successful Reset.
var (
	ErrConnectionRefused    = errors.New("smtp server refused connection")
	ErrAccessDenied         = errors.New("access denied")
	ErrTLSNegotiation       = errors.New("tls negotiation failure")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrSessionReset         = errors.New("unable to reset smtp session")
	ErrInvalidAddress       = errors.New("invalid address")
	ErrMessageRejected      = errors.New("message rejected")
)

// Error is a session failure annotated with the protocol transcript
// accumulated since the last successful reset. Addr names the rejected
// address when Err is ErrInvalidAddress.
type Error struct {
	Err        error  // taxonomy sentinel
	Cause      error  // underlying transport error, if any
	Addr       string // rejected address, if any
	Transcript string
}

func (e *Error) Error() string {
	msg := e.Err.Error()
	if e.Addr != "" {
		msg += ": " + e.Addr
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if e.Transcript != "" {
		msg += "\n\n" + e.Transcript
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}
