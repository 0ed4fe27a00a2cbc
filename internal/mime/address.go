package mime

import "strings"

// AddressList splits a semicolon-separated address list into its
// entries, trimming surrounding whitespace and dropping empty ones.
// An empty or unset list yields nil.
func AddressList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// MailAddress extracts the bare address from a display-form address
// such as "Jane Doe <jane@example.com>". Addresses already in bare form
// are returned unchanged.
func MailAddress(s string) string {
	if _, addr, ok := splitDisplay(s); ok {
		return addr[1 : len(addr)-1]
	}
	return s
}

// EncodeAddress RFC 2047-encodes the display-name portion of a
// display-form address, leaving the <addr> suffix verbatim. Bare
// addresses are returned unchanged.
func EncodeAddress(s string) string {
	if name, addr, ok := splitDisplay(s); ok {
		return EncodeWord(name) + " " + addr
	}
	return s
}

// splitDisplay splits "Display Name <user@host>" into its display text
// and "<user@host>" parts. ok is false when s is not in display form:
// the bare address must be reachable through the last space before the
// trailing <...> pair.
func splitDisplay(s string) (name, addr string, ok bool) {
	if s == "" || s[len(s)-1] != '>' {
		return "", "", false
	}
	i := strings.LastIndexByte(s, ' ')
	if i == -1 || s[i+1] != '<' {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}
