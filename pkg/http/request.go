package http

import (
	"net/http"
	"strings"
)

// clientIPHeaders lists the proxy headers consulted for the original
// client address, in preference order. The first header is set by most
// hosting proxies; CF-Connecting-IP covers Cloudflare.
var clientIPHeaders = []string{
	"X-Forwarded-For",
	"X-Real-IP",
	"CF-Connecting-IP",
}

// ClientIP extracts a best-effort client address from proxy headers.
// Returns "" when no header is present. The value is untrusted input:
// it is a heuristic for rate limiting and monitoring only, and must
// never feed an authorization decision.
func ClientIP(r *http.Request) string {
	for _, header := range clientIPHeaders {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}

		// X-Forwarded-For may carry a chain; the first entry is the
		// original client.
		if idx := strings.Index(value, ","); idx >= 0 {
			value = value[:idx]
		}

		if ip := strings.TrimSpace(value); ip != "" {
			return ip
		}
	}

	return ""
}
