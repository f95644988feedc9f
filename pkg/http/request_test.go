package http

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP_PreferenceOrder(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name:    "no headers",
			headers: map[string]string{},
			want:    "",
		},
		{
			name:    "forwarded-for single",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.7"},
			want:    "203.0.113.7",
		},
		{
			name:    "forwarded-for chain takes first",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.7, 70.41.3.18, 150.172.238.178"},
			want:    "203.0.113.7",
		},
		{
			name:    "forwarded-for wins over real-ip",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.7", "X-Real-IP": "198.51.100.1"},
			want:    "203.0.113.7",
		},
		{
			name:    "real-ip fallback",
			headers: map[string]string{"X-Real-IP": " 198.51.100.1 "},
			want:    "198.51.100.1",
		},
		{
			name:    "cloudflare fallback",
			headers: map[string]string{"CF-Connecting-IP": "198.51.100.2"},
			want:    "198.51.100.2",
		},
		{
			name:    "blank forwarded-for falls through",
			headers: map[string]string{"X-Forwarded-For": "  ", "X-Real-IP": "198.51.100.1"},
			want:    "198.51.100.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/api/waitlist", nil)
			for name, value := range tt.headers {
				r.Header.Set(name, value)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
