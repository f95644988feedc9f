package services

import (
	"net"
	"net/http"

	"github.com/ettra/waitlist-api/internal/ratelimit"
	pkghttp "github.com/ettra/waitlist-api/pkg/http"
	pkglogger "github.com/ettra/waitlist-api/pkg/logger"
)

// DenyReason says why an admission decision rejected a request
type DenyReason string

const (
	DenySuspicious  DenyReason = "suspicious_client"
	DenyRateLimited DenyReason = "rate_limited"
)

// Decision is the outcome of admission control for one request
type Decision struct {
	Allowed    bool
	Reason     DenyReason
	RetryAfter int
	ClientIP   string
}

// AdmissionService gatekeeps requests before any downstream work:
// client classification, the suspicious-address heuristic, and the
// sliding-window rate limit, with security events for every rejection.
type AdmissionService struct {
	limiter *ratelimit.Limiter
	events  *pkglogger.SecurityLogger
}

// NewAdmissionService creates a new AdmissionService
func NewAdmissionService(limiter *ratelimit.Limiter, events *pkglogger.SecurityLogger) *AdmissionService {
	return &AdmissionService{
		limiter: limiter,
		events:  events,
	}
}

// Admit decides whether a request may proceed to the endpoint's
// workflow. Rejections are logged as security events; admission itself
// has no side effects beyond counting against the client's window.
func (s *AdmissionService) Admit(endpoint string, r *http.Request) Decision {
	clientIP := pkghttp.ClientIP(r)

	if IsSuspiciousIP(clientIP) {
		s.events.Log(pkglogger.SecurityEvent{
			Type:      pkglogger.EventSuspiciousActivity,
			Endpoint:  endpoint,
			IPAddress: clientIP,
			UserAgent: r.UserAgent(),
		})
		return Decision{Allowed: false, Reason: DenySuspicious, ClientIP: clientIP}
	}

	result := s.limiter.Check(endpoint, clientIP)
	if !result.Allowed {
		s.events.Log(pkglogger.SecurityEvent{
			Type:      pkglogger.EventRateLimitExceeded,
			Endpoint:  endpoint,
			IPAddress: clientIP,
			UserAgent: r.UserAgent(),
			Details: map[string]any{
				"rate_limit_key": ratelimit.Key(endpoint, clientIP),
			},
		})
		return Decision{
			Allowed:    false,
			Reason:     DenyRateLimited,
			RetryAfter: result.RetryAfter,
			ClientIP:   clientIP,
		}
	}

	return Decision{Allowed: true, ClientIP: clientIP}
}

// IsSuspiciousIP flags private and loopback addresses: legitimate
// traffic behind the hosting proxy never presents one, so their
// appearance in a forwarding header suggests tampering. Absence of an
// address is a normal case, not suspicious.
func IsSuspiciousIP(clientIP string) bool {
	if clientIP == "" {
		return false
	}

	if clientIP == "localhost" {
		return true
	}

	ip := net.ParseIP(clientIP)
	if ip == nil {
		return false
	}

	return ip.IsLoopback() || ip.IsPrivate()
}
