package mailer

import (
	"errors"

	"github.com/osvegis/mailer/internal/smtp"
)

// Session failures, re-exported so callers can match them with
// errors.Is without importing the internal session package. Errors
// raised during a protocol exchange carry the accumulated transcript;
// unwrap to *SessionError to read it.
var (
	ErrConnectionRefused    = smtp.ErrConnectionRefused
	ErrAccessDenied         = smtp.ErrAccessDenied
	ErrTLSNegotiation       = smtp.ErrTLSNegotiation
	ErrAuthenticationFailed = smtp.ErrAuthenticationFailed
	ErrSessionReset         = smtp.ErrSessionReset
	ErrInvalidAddress       = smtp.ErrInvalidAddress
	ErrMessageRejected      = smtp.ErrMessageRejected
)

// SessionError annotates a session failure with the protocol
// transcript and, for address rejections, the rejected address.
type SessionError = smtp.Error

// Composer failures.
var (
	// ErrMissingSubject reports an EML file without a Subject header.
	ErrMissingSubject = errors.New("eml file has no subject")
	// ErrInvalidEML reports an EML file without a Content-Type header
	// or without a body.
	ErrInvalidEML = errors.New("invalid eml file")
	// ErrAttachmentRead reports a failure reading an attachment's byte
	// source mid-stream.
	ErrAttachmentRead = errors.New("attachment read failure")
)
