package services_test

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ettra/waitlist-api/internal/ratelimit"
	"github.com/ettra/waitlist-api/internal/services"
	pkglogger "github.com/ettra/waitlist-api/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func newTestAdmissionService(waitlistMax int) *services.AdmissionService {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	limiter := ratelimit.New(ratelimit.Policy{MaxRequests: 30, Window: time.Minute}, 5*time.Minute, logger)
	limiter.SetPolicy("/api/waitlist", ratelimit.Policy{MaxRequests: waitlistMax, Window: time.Minute})
	return services.NewAdmissionService(limiter, pkglogger.NewSecurityLogger(logger))
}

func TestAdmit_AllowsNormalClient(t *testing.T) {
	svc := newTestAdmissionService(5)

	r := httptest.NewRequest("POST", "/api/waitlist", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.7")

	decision := svc.Admit("/api/waitlist", r)
	assert.True(t, decision.Allowed)
	assert.Equal(t, "203.0.113.7", decision.ClientIP)
	assert.Zero(t, decision.RetryAfter)
}

func TestAdmit_RejectsSuspiciousClient(t *testing.T) {
	svc := newTestAdmissionService(5)

	for _, ip := range []string{"127.0.0.1", "10.1.2.3", "192.168.0.44", "172.16.5.5", "::1", "localhost"} {
		r := httptest.NewRequest("POST", "/api/waitlist", nil)
		r.Header.Set("X-Forwarded-For", ip)

		decision := svc.Admit("/api/waitlist", r)
		assert.False(t, decision.Allowed, "ip %s should be rejected", ip)
		assert.Equal(t, services.DenySuspicious, decision.Reason)
	}
}

func TestAdmit_RateLimitsAfterWindowExhausted(t *testing.T) {
	svc := newTestAdmissionService(2)

	r := httptest.NewRequest("POST", "/api/waitlist", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.7")

	assert.True(t, svc.Admit("/api/waitlist", r).Allowed)
	assert.True(t, svc.Admit("/api/waitlist", r).Allowed)

	decision := svc.Admit("/api/waitlist", r)
	assert.False(t, decision.Allowed)
	assert.Equal(t, services.DenyRateLimited, decision.Reason)
	assert.GreaterOrEqual(t, decision.RetryAfter, 1)
	assert.LessOrEqual(t, decision.RetryAfter, 60)
}

func TestAdmit_MissingAddressIsNotSuspicious(t *testing.T) {
	svc := newTestAdmissionService(5)

	r := httptest.NewRequest("POST", "/api/waitlist", nil)

	decision := svc.Admit("/api/waitlist", r)
	assert.True(t, decision.Allowed)
	assert.Empty(t, decision.ClientIP)
}

func TestIsSuspiciousIP(t *testing.T) {
	tests := []struct {
		ip         string
		suspicious bool
	}{
		{"", false},
		{"203.0.113.7", false},
		{"2606:4700::1111", false},
		{"not-an-ip", false},
		{"127.0.0.1", true},
		{"10.0.0.1", true},
		{"192.168.1.1", true},
		{"172.31.255.1", true},
		{"::1", true},
		{"localhost", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.suspicious, services.IsSuspiciousIP(tt.ip), "ip: %q", tt.ip)
	}
}
