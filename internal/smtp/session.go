// Package smtp implements the client session state machine over a
// wire-level SMTP transport: connect, greet, optional STARTTLS upgrade
// with repeated greeting, mechanism-negotiated authentication, and the
// per-message reset/envelope/data/confirm cycle.
package smtp

import (
	"crypto/tls"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	smtpx "github.com/wneessen/go-mail/smtp"
)

// Security selects the transport security mode for a session.
type Security int

const (
	// SecurityTLS connects in cleartext and upgrades with STARTTLS.
	SecurityTLS Security = iota
	// SecuritySSL negotiates TLS from the first byte.
	SecuritySSL
	// SecurityNone stays in cleartext, including authentication.
	// Not recommended.
	SecurityNone
)

func (s Security) String() string {
	switch s {
	case SecurityTLS:
		return "tls"
	case SecuritySSL:
		return "ssl"
	case SecurityNone:
		return "none"
	}
	return "unknown"
}

// DefaultPort returns the standard submission port for the mode:
// 587 for STARTTLS, 465 for implicit TLS, 25 for cleartext.
func (s Security) DefaultPort() int {
	switch s {
	case SecuritySSL:
		return 465
	case SecurityNone:
		return 25
	default:
		return 587
	}
}

// defaultTimeout bounds the connection dial. Protocol round trips
// block for as long as the server takes; callers wanting tighter
// bounds impose them at the transport layer.
const defaultTimeout = 30 * time.Second

// Transport is the wire-level SMTP exchange the session drives. Its
// method set matches *smtp.Client from github.com/wneessen/go-mail/smtp,
// which backs production sessions.
type Transport interface {
	Hello(localName string) error
	Extension(ext string) (bool, string)
	StartTLS(config *tls.Config) error
	Auth(a smtpx.Auth) error
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Reset() error
	Quit() error
	Close() error
}

// conn adapts *smtp.Client to the session's greeting discipline: the
// underlying client already repeats the EHLO exchange inside StartTLS
// (RFC 3207), so the explicit re-greeting the session issues after an
// upgrade must not hit the wire again.
type conn struct {
	*smtpx.Client
	upgraded bool
}

func (c *conn) StartTLS(config *tls.Config) error {
	if err := c.Client.StartTLS(config); err != nil {
		return err
	}
	c.upgraded = true
	return nil
}

func (c *conn) Hello(localName string) error {
	if c.upgraded {
		return nil
	}
	return c.Client.Hello(localName)
}

// Options configure Open.
type Options struct {
	Host       string
	Port       int // 0 selects the default for the security mode
	Username   string
	Password   string
	Security   Security
	VerifyCert bool          // verify the server certificate chain and name
	LocalName  string        // EHLO name; defaults to the OS hostname
	Timeout    time.Duration // dial timeout; defaults to 30s
	Logger     *slog.Logger
}

// Session owns one SMTP connection and processes one message at a
// time. It is not safe for concurrent use; callers must serialize.
type Session struct {
	tr     Transport
	host   string
	local  string
	clear  bool // the channel stays unencrypted; auth may still run
	rec    *transcript
	logger *slog.Logger
}

// Open dials the server, performs the full connect, greeting, optional
// TLS upgrade and authentication sequence, and returns a ready
// session. No partial session is ever returned: any failure closes the
// connection.
func Open(opts Options) (*Session, error) {
	port := opts.Port
	if port == 0 {
		port = opts.Security.DefaultPort()
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	addr := net.JoinHostPort(opts.Host, strconv.Itoa(port))
	tlsConfig := &tls.Config{
		ServerName:         opts.Host,
		InsecureSkipVerify: !opts.VerifyCert,
		MinVersion:         tls.VersionTLS12,
	}

	dialer := &net.Dialer{Timeout: timeout}
	var (
		nc  net.Conn
		err error
	)
	if opts.Security == SecuritySSL {
		nc, err = tls.DialWithDialer(dialer, "tcp", addr, tlsConfig)
	} else {
		nc, err = dialer.Dial("tcp", addr)
	}
	if err != nil {
		return nil, &Error{Err: ErrConnectionRefused, Cause: err}
	}

	client, err := smtpx.NewClient(nc, opts.Host)
	if err != nil {
		nc.Close()
		return nil, &Error{Err: ErrConnectionRefused, Cause: err}
	}

	s := NewSession(&conn{Client: client}, opts.Host, opts.LocalName,
		opts.Security == SecurityNone, opts.Logger)
	client.SetLogger(s.rec)
	client.SetDebugLog(true)

	var upgrade *tls.Config
	if opts.Security == SecurityTLS {
		upgrade = tlsConfig
	}
	if err := s.Handshake(upgrade, opts.Username, opts.Password); err != nil {
		client.Close()
		return nil, err
	}

	s.logger.Debug("smtp session established",
		"host", opts.Host,
		"port", port,
		"security", opts.Security.String(),
	)
	return s, nil
}

// NewSession wraps an established transport without performing any
// protocol exchange. Open uses it internally; tests inject fakes
// through it. cleartext marks a channel that stays unencrypted, which
// selects authenticators willing to run without TLS. A nil logger
// falls back to slog.Default and an empty localName to the OS
// hostname.
func NewSession(tr Transport, host, localName string, cleartext bool, logger *slog.Logger) *Session {
	if localName == "" {
		localName = osHostname()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		tr:     tr,
		host:   host,
		local:  localName,
		clear:  cleartext,
		rec:    &transcript{},
		logger: logger,
	}
}

func osHostname() string {
	hn, err := os.Hostname()
	if err != nil {
		return "localhost"
	}
	return hn
}

// Handshake runs the greeting, optional TLS upgrade with repeated
// greeting, and authentication. A non-nil upgrade config requests the
// STARTTLS upgrade. The greeting always happens first, even in
// cleartext modes: some servers only advertise their capabilities to
// clients that have introduced themselves.
func (s *Session) Handshake(upgrade *tls.Config, user, password string) error {
	if err := s.tr.Hello(s.local); err != nil {
		return s.fail(ErrAccessDenied, err)
	}

	if upgrade != nil {
		if err := s.tr.StartTLS(upgrade); err != nil {
			return s.fail(ErrTLSNegotiation, err)
		}
		// Some servers reset their state on upgrade, so greet again.
		if err := s.tr.Hello(s.local); err != nil {
			return s.fail(ErrAccessDenied, err)
		}
	}

	return s.authenticate(user, password)
}

// authenticate tries the server's advertised AUTH mechanisms in the
// server's stated order, skipping names the session does not
// recognize, and stops at the first success. When the server
// advertises no mechanisms at all the session proceeds
// unauthenticated, matching servers that do not require AUTH.
func (s *Session) authenticate(user, password string) error {
	ok, advertised := s.tr.Extension("AUTH")
	if !ok {
		s.logger.Debug("server advertises no AUTH extension, proceeding unauthenticated")
		return nil
	}

	names := strings.Fields(advertised)
	if len(names) == 0 {
		names = mechanisms
	}
	for _, name := range names {
		a := mechanism(name, s.host, user, password, s.clear)
		if a == nil {
			continue
		}
		if err := s.tr.Auth(a); err != nil {
			s.logger.Debug("auth mechanism rejected", "mechanism", name, "error", err)
			continue
		}
		s.logger.Debug("authenticated", "mechanism", name)
		return nil
	}

	return s.fail(ErrAuthenticationFailed, nil)
}

// Reset aborts any in-progress transaction and clears the transcript.
// It must be called before composing each message.
func (s *Session) Reset() error {
	if err := s.tr.Reset(); err != nil {
		return s.fail(ErrSessionReset, err)
	}
	s.rec.Reset()
	return nil
}

// Sender registers the envelope sender. The address must be in bare
// form.
func (s *Session) Sender(addr string) error {
	if err := s.tr.Mail(addr); err != nil {
		return &Error{Err: ErrInvalidAddress, Addr: addr, Cause: err, Transcript: s.rec.String()}
	}
	return nil
}

// Recipient registers one envelope recipient.
func (s *Session) Recipient(addr string) error {
	if err := s.tr.Rcpt(addr); err != nil {
		return &Error{Err: ErrInvalidAddress, Addr: addr, Cause: err, Transcript: s.rec.String()}
	}
	return nil
}

// Data opens the message data channel. The returned writer must be
// closed on every exit path: Close flushes buffered bytes, terminates
// the exchange and reads the server's completion acknowledgment,
// reporting ErrMessageRejected when the message was not accepted.
func (s *Session) Data() (io.WriteCloser, error) {
	w, err := s.tr.Data()
	if err != nil {
		return nil, s.fail(ErrMessageRejected, err)
	}
	return &dataChannel{w: w, s: s}, nil
}

type dataChannel struct {
	w      io.WriteCloser
	s      *Session
	closed bool
}

func (d *dataChannel) Write(p []byte) (int, error) {
	return d.w.Write(p)
}

func (d *dataChannel) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if err := d.w.Close(); err != nil {
		return d.s.fail(ErrMessageRejected, err)
	}
	return nil
}

// Transcript returns the protocol exchange recorded since the last
// successful reset.
func (s *Session) Transcript() string {
	return s.rec.String()
}

// Close attempts a polite logout and then releases the connection.
// Only a failing disconnect is surfaced; a logout failure is
// superseded once the disconnect has been attempted.
func (s *Session) Close() error {
	if err := s.tr.Quit(); err == nil {
		// A successful QUIT shuts the connection down on the way out.
		return nil
	}
	return s.tr.Close()
}

func (s *Session) fail(sentinel, cause error) error {
	return &Error{Err: sentinel, Cause: cause, Transcript: s.rec.String()}
}
