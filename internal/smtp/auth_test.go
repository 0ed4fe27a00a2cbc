package smtp

import (
	"bytes"
	"testing"

	smtpx "github.com/wneessen/go-mail/smtp"
)

func TestMechanismMapping(t *testing.T) {
	t.Parallel()

	info := &smtpx.ServerInfo{Name: "mail.example.com", TLS: true}
	tests := []struct {
		name string
	}{
		{"PLAIN"},
		{"CRAM-MD5"},
		{"LOGIN"},
		{"XOAUTH"},
		{"XOAUTH2"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := mechanism(tt.name, "mail.example.com", "user", "secret", false)
			if a == nil {
				t.Fatal("mechanism returned nil")
			}
			proto, _, err := a.Start(info)
			if err != nil {
				t.Fatalf("Start: %v", err)
			}
			if proto != tt.name {
				t.Errorf("proto = %q, want %q", proto, tt.name)
			}
		})
	}
}

func TestMechanismCleartext(t *testing.T) {
	t.Parallel()

	// Without encryption, PLAIN and LOGIN must still start the
	// exchange instead of refusing to send credentials.
	info := &smtpx.ServerInfo{Name: "mail.example.com", TLS: false}
	for _, name := range []string{"PLAIN", "LOGIN"} {
		a := mechanism(name, "mail.example.com", "user", "secret", true)
		if a == nil {
			t.Fatalf("mechanism(%q) returned nil", name)
		}
		proto, _, err := a.Start(info)
		if err != nil {
			t.Errorf("%s: Start over cleartext refused: %v", name, err)
			continue
		}
		if proto != name {
			t.Errorf("proto = %q, want %q", proto, name)
		}
	}
}

func TestMechanismUnrecognized(t *testing.T) {
	t.Parallel()

	if a := mechanism("SCRAM-SHA-256", "mail.example.com", "user", "secret", false); a != nil {
		t.Errorf("mechanism returned %v, want nil", a)
	}
}

func TestPlainAuthCleartext(t *testing.T) {
	t.Parallel()

	a := &plainAuth{user: "user", password: "secret"}
	proto, init, err := a.Start(&smtpx.ServerInfo{Name: "mail.example.com", TLS: false})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if proto != "PLAIN" {
		t.Errorf("proto = %q, want PLAIN", proto)
	}
	if want := []byte("\x00user\x00secret"); !bytes.Equal(init, want) {
		t.Errorf("initial response = %q, want %q", init, want)
	}
	if _, err := a.Next([]byte("challenge"), true); err == nil {
		t.Error("PLAIN must reject a server challenge")
	}
}

func TestLoginAuthCleartext(t *testing.T) {
	t.Parallel()

	a := &loginAuth{user: "user", password: "secret"}
	proto, _, err := a.Start(&smtpx.ServerInfo{Name: "mail.example.com", TLS: false})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if proto != "LOGIN" {
		t.Errorf("proto = %q, want LOGIN", proto)
	}

	tests := []struct {
		challenge string
		want      string
	}{
		{"Username:", "user"},
		{"Password:", "secret"},
	}
	for _, tt := range tests {
		resp, err := a.Next([]byte(tt.challenge), true)
		if err != nil {
			t.Fatalf("Next(%q): %v", tt.challenge, err)
		}
		if string(resp) != tt.want {
			t.Errorf("Next(%q) = %q, want %q", tt.challenge, resp, tt.want)
		}
	}
	if _, err := a.Next([]byte("PIN:"), true); err == nil {
		t.Error("LOGIN must reject an unknown challenge")
	}
}

func TestXOAuthInitialResponse(t *testing.T) {
	t.Parallel()

	a := &xoauth{token: "oauth-string"}
	proto, resp, err := a.Start(&smtpx.ServerInfo{Name: "mail.example.com", TLS: true})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if proto != "XOAUTH" {
		t.Errorf("proto = %q, want XOAUTH", proto)
	}
	if !bytes.Equal(resp, []byte("oauth-string")) {
		t.Errorf("initial response = %q, want the token verbatim", resp)
	}

	// An unexpected server challenge gets an empty reply, not an error.
	next, err := a.Next([]byte("challenge"), true)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if len(next) != 0 {
		t.Errorf("challenge reply = %q, want empty", next)
	}
}
