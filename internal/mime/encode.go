// Package mime implements the header and body encodings the composer
// emits on the wire: RFC 2047 encoded words, RFC 822 subject folding,
// quoted-printable transcoding and line-streamed base64.
package mime

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// NeedsEncoding reports whether s contains any character outside the
// printable ASCII range 32-126 and therefore cannot appear verbatim in
// a header field.
func NeedsEncoding(s string) bool {
	for _, r := range s {
		if r < 32 || r > 126 {
			return true
		}
	}
	return false
}

// EncodeWord returns s unchanged when it is plain printable ASCII,
// otherwise it wraps the UTF-8 bytes of s in a single RFC 2047
// encoded word: =?UTF-8?B?<base64>?=.
func EncodeWord(s string) string {
	if s == "" || !NeedsEncoding(s) {
		return s
	}
	return "=?UTF-8?B?" + base64.StdEncoding.EncodeToString([]byte(s)) + "?="
}

// Base64 of 42 source bytes fills a 56-character first subject line
// (14 groups of 4 after the "Subject: " prefix); 48 bytes fill the
// 64-character continuation lines (16 groups).
const (
	firstSubjectChunk = 42
	nextSubjectChunk  = 48
)

// EncodeSubject prepares a subject for the Subject header field.
// Plain ASCII subjects are folded into lines of at most 75 columns;
// anything else is emitted as a sequence of RFC 2047 encoded words,
// one per folded line.
func EncodeSubject(s string) string {
	if s == "" {
		return ""
	}
	if !NeedsEncoding(s) {
		return foldSubject(s)
	}

	content := []byte(s)
	var b strings.Builder
	chunk := firstSubjectChunk
	for i := 0; i < len(content); {
		if b.Len() > 0 {
			b.WriteString("\n ")
		}
		end := i + chunk
		if end > len(content) {
			end = len(content)
		}
		b.WriteString("=?UTF-8?B?")
		b.WriteString(base64.StdEncoding.EncodeToString(content[i:end]))
		b.WriteString("?=")
		chunk = nextSubjectChunk
		i = end
	}
	return b.String()
}

// foldSubject word-wraps s so that no line exceeds 75 columns, counting
// the "Subject: " prefix on the first line. Continuation lines start
// with a single folding space and words are never split.
func foldSubject(s string) string {
	const prefix = len("Subject: ")
	var b strings.Builder
	lineStart := -prefix
	for _, word := range strings.Fields(s) {
		if b.Len() == 0 {
			b.WriteString(word)
			continue
		}
		if b.Len()-lineStart+1+len(word) > 75 {
			b.WriteString("\n ")
			lineStart = b.Len()
		} else {
			b.WriteByte(' ')
		}
		b.WriteString(word)
	}
	return b.String()
}

// IsHTML reports whether s starts with the literal "<html>" after any
// leading whitespace, case-insensitively. An empty body is never HTML.
func IsHTML(s string) bool {
	t := strings.TrimLeftFunc(s, unicode.IsSpace)
	if len(t) < len("<html>") {
		return false
	}
	return strings.EqualFold(t[:len("<html>")], "<html>")
}

// maxQPWidth is the quoted-printable line limit, including the "="
// soft-break marker.
const maxQPWidth = 76

// QuotedPrintable encodes the ISO-8859-1 byte representation of s as
// RFC 2045 quoted-printable. Bytes 33-126 except '=' pass through, as
// do spaces not immediately followed by a newline; a '\n' becomes a
// hard CRLF; every other byte is escaped as =XX. Lines are soft-wrapped
// with "=\r\n" before they would reach 76 columns.
func QuotedPrintable(s string) string {
	if s == "" {
		return ""
	}

	content := Latin1Bytes(s)
	last := len(content) - 1
	var b strings.Builder
	start := 0

	for i := 0; i < len(content); i++ {
		c := content[i]
		switch {
		case c == '\n':
			b.WriteString("\r\n")
			start = b.Len()
		case c >= 33 && c <= 126 && c != '=',
			c == ' ' && i < last && content[i+1] != '\n':
			start = softWrap(&b, start, 1)
			b.WriteByte(c)
		default:
			start = softWrap(&b, start, 3)
			fmt.Fprintf(&b, "=%02X", c)
		}
	}
	return b.String()
}

// softWrap inserts a soft line break when the current line cannot take
// required more characters without reaching the 76-column limit, and
// returns the index in b where the current output line starts.
func softWrap(b *strings.Builder, lineStart, required int) int {
	if b.Len()-lineStart+required >= maxQPWidth {
		b.WriteString("=\r\n")
		return b.Len()
	}
	return lineStart
}

// Latin1Bytes converts s to its ISO-8859-1 byte representation,
// substituting unmappable runes. Message bodies travel in this
// encoding, so text that decoded from ISO-8859-1 round-trips
// byte for byte.
func Latin1Bytes(s string) []byte {
	enc := encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder())
	out, err := enc.Bytes([]byte(s))
	if err != nil {
		// ReplaceUnsupported never fails; fall back to the raw bytes.
		return []byte(s)
	}
	return out
}

// Latin1Reader wraps r so its ISO-8859-1 bytes read as UTF-8 text.
func Latin1Reader(r io.Reader) io.Reader {
	return charmap.ISO8859_1.NewDecoder().Reader(r)
}
