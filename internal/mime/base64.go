package mime

import (
	"encoding/base64"
	"io"
)

// base64LineBytes is the number of source bytes per output line: 57
// bytes encode to exactly 76 base64 characters, the MIME line-length
// convention.
const base64LineBytes = 57

// WriteBase64Lines streams r into w as base64, emitting a CRLF followed
// by the encoding of each 57-byte block. The source is read
// sequentially and never buffered in full; short reads are accumulated
// until a block is complete or the source is exhausted, so only the
// final line may be shorter than 76 characters.
func WriteBase64Lines(w io.Writer, r io.Reader) error {
	buf := make([]byte, base64LineBytes)
	for {
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			line := "\r\n" + base64.StdEncoding.EncodeToString(buf[:n])
			if _, werr := io.WriteString(w, line); werr != nil {
				return werr
			}
		}
		switch err {
		case nil:
		case io.EOF, io.ErrUnexpectedEOF:
			return nil
		default:
			return err
		}
	}
}
