package mailer

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileAttachment(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report.pdf")
	if err := os.WriteFile(path, bytes.Repeat([]byte{0xAB}, 57), 0o600); err != nil {
		t.Fatal(err)
	}

	a := FileAttachment(path)
	if a.name != "report.pdf" {
		t.Errorf("name = %q, want report.pdf", a.name)
	}

	var buf bytes.Buffer
	if err := a.writeTo(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	line := buf.String()
	if !strings.HasPrefix(line, "\r\n") || len(line) != 2+76 {
		t.Errorf("57-byte file must stream as one CRLF-prefixed 76-char line, got %q", line)
	}
}

func TestFileAttachmentMissing(t *testing.T) {
	t.Parallel()

	a := FileAttachment(filepath.Join(t.TempDir(), "absent.bin"))
	err := a.writeTo(&bytes.Buffer{})
	if !errors.Is(err, ErrAttachmentRead) {
		t.Fatalf("got %v, want ErrAttachmentRead", err)
	}
}

func TestAttachmentWithName(t *testing.T) {
	t.Parallel()

	a := NewAttachment("tmp-1234", strings.NewReader("x")).WithName("informe año.pdf")
	if a.name != "informe año.pdf" {
		t.Errorf("name = %q", a.name)
	}
}

func TestAttachmentWriteFailureKeepsIdentity(t *testing.T) {
	t.Parallel()

	a := NewAttachment("a.bin", strings.NewReader("some data"))
	err := a.writeTo(failingWriter{})
	if err == nil || errors.Is(err, ErrAttachmentRead) {
		t.Fatalf("write failure must not count as a read failure, got %v", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("broken pipe") }
