package logger

import (
	"context"
	"log/slog"
	"time"
)

// SecurityEventType enumerates the notable admission and workflow outcomes
// we record for monitoring.
type SecurityEventType string

const (
	EventRateLimitExceeded    SecurityEventType = "rate_limit_exceeded"
	EventInvalidRequest       SecurityEventType = "invalid_request"
	EventUnauthorizedAccess   SecurityEventType = "unauthorized_access"
	EventSuspiciousActivity   SecurityEventType = "suspicious_activity"
	EventFailedAuthentication SecurityEventType = "failed_authentication"
	EventAPIAbuse             SecurityEventType = "api_abuse"
)

// SecurityEvent is an immutable record of a notable security decision.
// It is emitted once at the moment of detection and never persisted.
type SecurityEvent struct {
	Type      SecurityEventType
	Endpoint  string
	IPAddress string
	UserAgent string
	Details   map[string]any
	Timestamp time.Time
}

// SecurityLogger emits security events through slog. Emission never
// returns an error to the caller; a submission must not fail because
// observability did.
type SecurityLogger struct {
	logger *slog.Logger
}

// NewSecurityLogger creates a new security event logger
func NewSecurityLogger(logger *slog.Logger) *SecurityLogger {
	return &SecurityLogger{
		logger: logger,
	}
}

// Log records a security event at warn level
func (sl *SecurityLogger) Log(event SecurityEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	attrs := []slog.Attr{
		slog.String("security_event", string(event.Type)),
		slog.String("endpoint", event.Endpoint),
		slog.String("timestamp", event.Timestamp.UTC().Format(time.RFC3339)),
	}

	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.UserAgent != "" {
		attrs = append(attrs, slog.String("user_agent", event.UserAgent))
	}
	for key, val := range event.Details {
		attrs = append(attrs, slog.Any(key, val))
	}

	sl.logger.LogAttrs(context.Background(), slog.LevelWarn, "security", attrs...)
}
