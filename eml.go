package mailer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/osvegis/mailer/internal/mime"
)

const subjectPrefix = "Subject: "

// SendFile relays a previously composed EML file. The file is read as
// ISO-8859-1 text; its Subject is reused, the remaining original
// headers are replaced by a freshly composed block reflecting the
// Mailer's sender and the given recipients, and the Content-Type line,
// any boundary declaration line and the whole body pass through
// verbatim without re-encoding.
func (m *Mailer) SendFile(to, path string) error {
	// A file that cannot be opened is an I/O problem, not a malformed
	// message; ErrInvalidEML is reserved for content defects.
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open eml file: %w", err)
	}
	defer f.Close()

	if err := m.sendEML(to, f); err != nil {
		return err
	}
	m.logger.Debug("eml file sent", "to", to, "path", path)
	return nil
}

func (m *Mailer) sendEML(to string, r io.Reader) error {
	sc := bufio.NewScanner(mime.Latin1Reader(r))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var header, content, boundary string
	line, ok := scanLine(sc)

	for ok && line != "" {
		if strings.HasPrefix(line, subjectPrefix) {
			// The subject may continue on indented lines.
			subject := line[len(subjectPrefix):]
			for {
				line, ok = scanLine(sc)
				if !ok || line == "" || !startsWithSpace(line) {
					break
				}
				subject += "\n" + line
			}

			h, err := m.header(to, subject)
			if err != nil {
				return err
			}
			header = h

			if !ok || line == "" {
				break
			}
		}

		if strings.HasPrefix(line, "Content-Type:") {
			content = line
		} else if strings.Contains(line, "boundary=") {
			// The boundary declaration continued onto its own line.
			boundary = line
		}
		line, ok = scanLine(sc)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEML, err)
	}

	if header == "" {
		return ErrMissingSubject
	}
	// A valid file declares a content type and separates headers from
	// the body with a blank line.
	if !ok || content == "" {
		return ErrInvalidEML
	}

	w, err := m.sess.Data()
	if err != nil {
		return err
	}
	werr := writeEML(w, header, content, boundary, line, sc)
	cerr := w.Close()
	if werr != nil {
		return werr
	}
	return cerr
}

// writeEML emits the recomposed header block followed by the retained
// Content-Type and boundary lines and the body verbatim, each line
// re-terminated with CRLF and re-encoded back to its original
// ISO-8859-1 bytes.
func writeEML(w io.Writer, header, content, boundary, line string, sc *bufio.Scanner) error {
	mw := &messageWriter{w: w}
	mw.bytes(mime.Latin1Bytes(header))
	mw.bytes(mime.Latin1Bytes(content))
	mw.string("\r\n")
	if boundary != "" {
		mw.bytes(mime.Latin1Bytes(boundary))
		mw.string("\r\n")
	}

	// line holds the blank header/body separator.
	for {
		mw.bytes(mime.Latin1Bytes(line))
		mw.string("\r\n")
		if mw.err != nil || !sc.Scan() {
			break
		}
		line = sc.Text()
	}
	if mw.err == nil {
		mw.err = sc.Err()
	}
	return mw.err
}

func scanLine(sc *bufio.Scanner) (string, bool) {
	if sc.Scan() {
		return sc.Text(), true
	}
	return "", false
}

func startsWithSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsSpace(r)
}
