package mailer

import (
	"fmt"

	"github.com/osvegis/mailer/internal/smtp"
)

// Security selects the transport security mode for the connection.
type Security = smtp.Security

const (
	// SecurityTLS connects in cleartext and upgrades with STARTTLS.
	// Default submission port 587.
	SecurityTLS = smtp.SecurityTLS
	// SecuritySSL negotiates TLS from the first byte. Port 465.
	SecuritySSL = smtp.SecuritySSL
	// SecurityNone stays in cleartext, including authentication.
	// Port 25. Not recommended.
	SecurityNone = smtp.SecurityNone
)

// ParseSecurity maps a configuration string (tls, ssl, none) to its
// security mode.
func ParseSecurity(s string) (Security, error) {
	switch s {
	case "tls", "":
		return SecurityTLS, nil
	case "ssl":
		return SecuritySSL, nil
	case "none":
		return SecurityNone, nil
	}
	return SecurityTLS, fmt.Errorf("unknown security mode %q", s)
}
