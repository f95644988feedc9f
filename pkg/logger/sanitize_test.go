package logger

import "testing"

func TestSanitizedEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"user@example.com", "u***@*******.com"},
		{"a@b.io", "a@*.io"},
		{"not-an-email", "[invalid-email]"},
	}

	for _, tt := range tests {
		if got := SanitizedEmail(tt.in); got != tt.want {
			t.Errorf("SanitizedEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeQueryString(t *testing.T) {
	if !SanitizeQueryString("email=a@b.com") {
		t.Error("email parameter should be redacted")
	}
	if !SanitizeQueryString("captchaToken=abc") {
		t.Error("captcha parameter should be redacted")
	}
	if SanitizeQueryString("page=2&limit=10") {
		t.Error("benign parameters should not be redacted")
	}
}
