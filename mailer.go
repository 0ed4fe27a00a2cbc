// Package mailer is a basic outbound SMTP client. A Mailer owns one
// authenticated server session with a fixed sender and optional hidden
// recipients, and sends any number of messages over it: plain text
// (quoted-printable), HTML, multipart with streamed attachments, or a
// previously composed EML file relayed verbatim.
//
// A Mailer is not safe for concurrent use; callers must serialize
// sends on one instance.
package mailer

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/osvegis/mailer/internal/mime"
	"github.com/osvegis/mailer/internal/smtp"
)

// Options configure New. Host, Username, Password and From are
// required; everything else has a working default.
type Options struct {
	Host       string
	Port       int // 0 selects the default port for the security mode
	Username   string
	Password   string
	Security   Security
	VerifyCert bool // verify the server certificate chain and name

	// From is the fixed sender, in bare or display form. It is
	// immutable for the lifetime of the Mailer.
	From string
	// BCC lists hidden recipients separated by semicolons. They are
	// added to the envelope of every message but never appear in its
	// headers.
	BCC string

	LocalName string        // EHLO name; defaults to the OS hostname
	Timeout   time.Duration // dial timeout; defaults to 30s
	Logger    *slog.Logger  // defaults to slog.Default
}

// Mailer sends messages over one SMTP session.
type Mailer struct {
	sess   *smtp.Session
	from   string
	bcc    []string
	logger *slog.Logger
}

// New connects and authenticates, returning a ready Mailer. Any
// failure during the handshake closes the connection; no partial
// Mailer is returned.
func New(opts Options) (*Mailer, error) {
	sess, err := smtp.Open(smtp.Options{
		Host:       opts.Host,
		Port:       opts.Port,
		Username:   opts.Username,
		Password:   opts.Password,
		Security:   opts.Security,
		VerifyCert: opts.VerifyCert,
		LocalName:  opts.LocalName,
		Timeout:    opts.Timeout,
		Logger:     opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	return newWithSession(sess, opts.From, opts.BCC, opts.Logger), nil
}

// newWithSession wires a Mailer onto an established session. Tests
// inject fake transports through it.
func newWithSession(sess *smtp.Session, from, bcc string, logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mailer{
		sess:   sess,
		from:   strings.TrimSpace(from),
		bcc:    mime.AddressList(bcc),
		logger: logger,
	}
}

// Send transmits one message. Recipients are separated by semicolons:
// the first is the primary recipient, the rest travel as Cc. The body
// goes out as text/html when it starts with <html> after optional
// whitespace, otherwise as quoted-printable text/plain; attachments
// turn the message into multipart/mixed with streamed base64 parts.
//
// Per-message failures (ErrInvalidAddress, ErrSessionReset,
// ErrMessageRejected) leave the Mailer usable for another send.
func (m *Mailer) Send(to, subject, body string, attachments ...Attachment) error {
	header, err := m.header(to, mime.EncodeSubject(subject))
	if err != nil {
		return err
	}

	w, err := m.sess.Data()
	if err != nil {
		return err
	}
	werr := writeMessage(w, header, body, attachments)
	cerr := w.Close()
	if werr != nil {
		return werr
	}
	if cerr != nil {
		return cerr
	}

	m.logger.Debug("message sent", "to", to, "attachments", len(attachments))
	return nil
}

// header resets the session, registers the full envelope (sender,
// primary recipient, hidden recipients, Cc recipients) and returns the
// composed header block. The subject must already be encoded or
// folded. The block has no trailing blank line so MIME directives can
// follow the Subject field directly.
func (m *Mailer) header(to, subject string) (string, error) {
	if err := m.sess.Reset(); err != nil {
		return "", err
	}

	recipients := mime.AddressList(to)
	if len(recipients) == 0 {
		return "", fmt.Errorf("%w: no recipients", ErrInvalidAddress)
	}

	if err := m.sess.Sender(mime.MailAddress(m.from)); err != nil {
		return "", err
	}
	// The envelope always carries bare addresses; display names only
	// belong in the header block.
	if err := m.sess.Recipient(mime.MailAddress(recipients[0])); err != nil {
		return "", err
	}
	for _, bcc := range m.bcc {
		if err := m.sess.Recipient(mime.MailAddress(bcc)); err != nil {
			return "", err
		}
	}

	var cc []string
	for _, r := range recipients[1:] {
		if err := m.sess.Recipient(mime.MailAddress(r)); err != nil {
			return "", err
		}
		cc = append(cc, mime.EncodeAddress(r))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", mime.EncodeAddress(m.from))
	fmt.Fprintf(&b, "To: %s\r\n", mime.EncodeAddress(recipients[0]))
	if len(cc) > 0 {
		fmt.Fprintf(&b, "Cc: %s\r\n", strings.Join(cc, ", "))
	}
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Message-ID: <%s@%s>\r\n", uuid.NewString(), senderDomain(mime.MailAddress(m.from)))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	return b.String(), nil
}

func senderDomain(addr string) string {
	if i := strings.LastIndexByte(addr, '@'); i >= 0 && i+1 < len(addr) {
		return addr[i+1:]
	}
	return "localhost"
}

func writeMessage(w io.Writer, header, body string, attachments []Attachment) error {
	mw := &messageWriter{w: w}
	mw.string(header)

	boundary := ""
	if len(attachments) > 0 {
		boundary = newBoundary()
		mw.string("MIME-Version: 1.0\r\n")
		mw.string("Content-Type: multipart/mixed; boundary=" + boundary + "\r\n")
		mw.string("\r\n--" + boundary + "\r\n")
	}

	if mime.IsHTML(body) {
		mw.string("Content-Type: text/html; charset=ISO-8859-1\r\n")
		mw.string("Content-Transfer-Encoding: 8bit\r\n\r\n")
		mw.bytes(mime.Latin1Bytes(body))
		mw.string("\r\n")
	} else {
		mw.string("Content-Type: text/plain; charset=ISO-8859-1\r\n")
		mw.string("Content-Transfer-Encoding: quoted-printable\r\n\r\n")
		mw.string(mime.QuotedPrintable(body))
		mw.string("\r\n")
	}

	for _, a := range attachments {
		name := `"` + mime.EncodeWord(a.name) + `"`
		mw.string("\r\n--" + boundary + "\r\n")
		mw.string("Content-Type: application/octet-stream; name=" + name + "\r\n")
		mw.string("Content-Transfer-Encoding: base64\r\n")
		mw.string("Content-Disposition: attachment; filename=" + name + "\r\n")
		mw.attachment(a)
	}

	if boundary != "" {
		mw.string("\r\n--" + boundary + "--\r\n")
	}
	return mw.err
}

// newBoundary builds a time-based multipart boundary. Unique within
// the process lifetime is sufficient; it only has to never occur in
// the message content.
func newBoundary() string {
	ms := time.Now().UnixMilli()
	return fmt.Sprintf("_boundary_%d_%x_", ms, ms)
}

// messageWriter accumulates the first write failure so message
// assembly can run straight through and report once.
type messageWriter struct {
	w   io.Writer
	err error
}

func (m *messageWriter) string(s string) {
	if m.err == nil {
		_, m.err = io.WriteString(m.w, s)
	}
}

func (m *messageWriter) bytes(p []byte) {
	if m.err == nil {
		_, m.err = m.w.Write(p)
	}
}

func (m *messageWriter) attachment(a Attachment) {
	if m.err == nil {
		m.err = a.writeTo(m.w)
	}
}

// Transcript returns the protocol exchange recorded since the last
// reset, for diagnostics.
func (m *Mailer) Transcript() string {
	return m.sess.Transcript()
}

// Close logs out and releases the connection. The disconnect is always
// attempted; only its failure is surfaced.
func (m *Mailer) Close() error {
	return m.sess.Close()
}
