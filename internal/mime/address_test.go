package mime

import (
	"reflect"
	"testing"
)

func TestAddressList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"trimmed entries", "a@x.com; b@y.com ; c@z.com", []string{"a@x.com", "b@y.com", "c@z.com"}},
		{"single", "a@x.com", []string{"a@x.com"}},
		{"empty", "", nil},
		{"empty entries dropped", "a@x.com;; ;b@y.com", []string{"a@x.com", "b@y.com"}},
		{"display form kept whole", "Jane Doe <jane@x.com>; b@y.com", []string{"Jane Doe <jane@x.com>", "b@y.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AddressList(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("AddressList(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMailAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"display form", "Jane Doe <jane@x.com>", "jane@x.com"},
		{"bare", "jane@x.com", "jane@x.com"},
		{"empty", "", ""},
		{"angle only no space", "<jane@x.com>", "<jane@x.com>"},
		{"trailing text", "jane@x.com (home)", "jane@x.com (home)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MailAddress(tt.in); got != tt.want {
				t.Errorf("MailAddress(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncodeAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ascii display name unchanged", "Jane Doe <jane@x.com>", "Jane Doe <jane@x.com>"},
		{"bare unchanged", "jane@x.com", "jane@x.com"},
		{"non-ascii display name", "Óscar <o@x.com>", "=?UTF-8?B?w5NzY2Fy?= <o@x.com>"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeAddress(tt.in); got != tt.want {
				t.Errorf("EncodeAddress(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
