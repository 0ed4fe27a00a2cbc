package mailer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/osvegis/mailer/internal/mime"
)

// Attachment names a byte source to attach to a message. The source is
// read exactly once, sequentially, and is never buffered in full:
// attachment bytes stream to the wire in base64 lines of 76 characters.
type Attachment struct {
	name string
	open func() (io.ReadCloser, error)
}

// NewAttachment attaches the contents of r under the given name. The
// reader is borrowed for the duration of the send; closing it stays
// the caller's responsibility.
func NewAttachment(name string, r io.Reader) Attachment {
	return Attachment{
		name: name,
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(r), nil
		},
	}
}

// FileAttachment attaches the file at path under its base name. The
// file is opened when the message body is written and closed
// afterwards.
func FileAttachment(path string) Attachment {
	return Attachment{
		name: filepath.Base(path),
		open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// WithName returns a copy of the attachment carrying a different
// display name.
func (a Attachment) WithName(name string) Attachment {
	a.name = name
	return a
}

func (a Attachment) writeTo(w io.Writer) error {
	src, err := a.open()
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrAttachmentRead, a.name, err)
	}
	defer src.Close()

	// Only source failures count as attachment read failures; a failed
	// write is a transport problem and keeps its own identity.
	cr := &captureReader{r: src}
	if err := mime.WriteBase64Lines(w, cr); err != nil {
		if cr.err != nil {
			return fmt.Errorf("%w: %s: %w", ErrAttachmentRead, a.name, cr.err)
		}
		return err
	}
	return nil
}

type captureReader struct {
	r   io.Reader
	err error
}

func (c *captureReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if err != nil && err != io.EOF {
		c.err = err
	}
	return n, err
}
