package smtp

import (
	"errors"
	"fmt"
	"strings"

	smtpx "github.com/wneessen/go-mail/smtp"
)

// mechanisms the session recognizes, in the fixed order tried when the
// server does not advertise its own list.
var mechanisms = []string{"PLAIN", "CRAM-MD5", "LOGIN", "XOAUTH", "XOAUTH2"}

// mechanism returns the authenticator implementing the named SASL
// mechanism, or nil when the name is not recognized. Cleartext
// sessions get PLAIN and LOGIN implementations that permit the
// exchange without encryption; encrypted sessions keep the transport's
// own authenticators and their refusal to leak credentials.
func mechanism(name, host, user, password string, cleartext bool) smtpx.Auth {
	switch name {
	case "PLAIN":
		if cleartext {
			return &plainAuth{user: user, password: password}
		}
		return smtpx.PlainAuth("", user, password, host)
	case "CRAM-MD5":
		return smtpx.CRAMMD5Auth(user, password)
	case "LOGIN":
		if cleartext {
			return &loginAuth{user: user, password: password}
		}
		return smtpx.LoginAuth(user, password, host)
	case "XOAUTH":
		return &xoauth{token: user}
	case "XOAUTH2":
		return smtpx.XOAuth2Auth(user, password)
	}
	return nil
}

// plainAuth implements PLAIN without an encryption requirement, for
// sessions that stay in cleartext on purpose.
type plainAuth struct {
	user, password string
}

func (a *plainAuth) Start(_ *smtpx.ServerInfo) (string, []byte, error) {
	return "PLAIN", []byte("\x00" + a.user + "\x00" + a.password), nil
}

func (a *plainAuth) Next(_ []byte, more bool) ([]byte, error) {
	if more {
		return nil, errors.New("unexpected server challenge")
	}
	return nil, nil
}

// loginAuth implements LOGIN without an encryption requirement,
// answering the server's username and password prompts in turn.
type loginAuth struct {
	user, password string
}

func (a *loginAuth) Start(_ *smtpx.ServerInfo) (string, []byte, error) {
	return "LOGIN", nil, nil
}

func (a *loginAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	if !more {
		return nil, nil
	}
	switch strings.ToLower(strings.TrimSuffix(string(fromServer), ":")) {
	case "username", "user name":
		return []byte(a.user), nil
	case "password":
		return []byte(a.password), nil
	}
	return nil, fmt.Errorf("unexpected server challenge: %s", fromServer)
}

// xoauth implements the legacy XOAUTH mechanism: the caller supplies
// the pre-signed request blob as the username and it travels as the
// initial response; no challenge follows on success.
type xoauth struct {
	token string
}

func (a *xoauth) Start(_ *smtpx.ServerInfo) (string, []byte, error) {
	return "XOAUTH", []byte(a.token), nil
}

func (a *xoauth) Next(_ []byte, more bool) ([]byte, error) {
	if more {
		return []byte{}, nil
	}
	return nil, nil
}
