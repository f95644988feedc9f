package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"
)

// Policy bounds admissions for one endpoint: at most MaxRequests per
// client within any Window. Immutable after construction.
type Policy struct {
	MaxRequests int
	Window      time.Duration
}

// Result is the outcome of a single admission check. RetryAfter is the
// whole-second wait until the oldest in-window request ages out; it is
// only set on rejection and is never negative.
type Result struct {
	Allowed    bool
	RetryAfter int
}

// Limiter is an in-memory sliding-window rate limiter keyed by
// (endpoint, client). It holds per-key admission timestamps and applies
// per-endpoint policies, falling back to a default policy for endpoints
// without one. All state is process-local; losing it on restart merely
// resets everyone's window.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string][]time.Time
	policies map[string]Policy
	fallback Policy

	sweepInterval time.Duration
	stopCh        chan struct{}
	logger        *slog.Logger

	now func() time.Time
}

// New creates a Limiter with the given fallback policy and sweep period
func New(fallback Policy, sweepInterval time.Duration, logger *slog.Logger) *Limiter {
	return &Limiter{
		windows:       make(map[string][]time.Time),
		policies:      make(map[string]Policy),
		fallback:      fallback,
		sweepInterval: sweepInterval,
		stopCh:        make(chan struct{}),
		logger:        logger,
		now:           time.Now,
	}
}

// SetPolicy registers a per-endpoint policy. Intended to be called
// during wiring, before the limiter starts serving requests.
func (l *Limiter) SetPolicy(endpoint string, policy Policy) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.policies[endpoint] = policy
}

// Key builds the composite window key for an endpoint and client
// address. Clients with no resolvable address share the "unknown"
// bucket.
func Key(endpoint, clientIP string) string {
	if clientIP == "" {
		clientIP = "unknown"
	}
	return fmt.Sprintf("ratelimit:%s:%s", endpoint, clientIP)
}

// Check runs one sliding-window admission check for the given endpoint
// and client. The prune-count-append sequence holds the table lock so
// two simultaneous requests cannot both claim the last slot.
func (l *Limiter) Check(endpoint, clientIP string) Result {
	policy, ok := l.policyFor(endpoint)
	if !ok {
		policy = l.fallback
	}

	key := Key(endpoint, clientIP)
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	recent := pruned(l.windows[key], now, policy.Window)

	if len(recent) >= policy.MaxRequests {
		l.windows[key] = recent

		// Timestamps are appended in order, so the head is the oldest
		oldest := recent[0]
		remaining := oldest.Add(policy.Window).Sub(now)
		retryAfter := int(math.Ceil(remaining.Seconds()))
		if retryAfter < 0 {
			retryAfter = 0
		}
		return Result{Allowed: false, RetryAfter: retryAfter}
	}

	l.windows[key] = append(recent, now)
	return Result{Allowed: true}
}

func (l *Limiter) policyFor(endpoint string) (Policy, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	policy, ok := l.policies[endpoint]
	return policy, ok
}

// Start runs the periodic sweep until Stop is called or the context is
// cancelled. Sweeping bounds memory growth from keys that stop
// receiving traffic; correctness does not depend on it because Check
// prunes opportunistically.
func (l *Limiter) Start(ctx context.Context) {
	ticker := time.NewTicker(l.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stopCh:
			l.logger.Info("rate limiter sweep stopped")
			return
		case <-ctx.Done():
			l.logger.Info("rate limiter sweep context cancelled")
			return
		}
	}
}

// Stop signals the sweep loop to exit
func (l *Limiter) Stop() {
	close(l.stopCh)
}

// sweep drops aged timestamps from every key and deletes keys whose
// windows emptied. The window length depends on the key's endpoint, so
// the key is parsed back apart; keys that do not match a registered
// policy age out under the fallback window.
func (l *Limiter) sweep() {
	now := l.now()
	removed := 0

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, timestamps := range l.windows {
		window := l.fallback.Window
		for endpoint, policy := range l.policies {
			if matchesEndpoint(key, endpoint) {
				window = policy.Window
				break
			}
		}

		recent := pruned(timestamps, now, window)
		if len(recent) == 0 {
			delete(l.windows, key)
			removed++
			continue
		}
		l.windows[key] = recent
	}

	if removed > 0 {
		l.logger.Info("rate limit windows swept", slog.Int("keys_removed", removed))
	}
}

// TrackedKeys reports how many window keys are currently held
func (l *Limiter) TrackedKeys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

func matchesEndpoint(key, endpoint string) bool {
	prefix := "ratelimit:" + endpoint + ":"
	return len(key) >= len(prefix) && key[:len(prefix)] == prefix
}

// pruned returns only the timestamps strictly within the window of now
func pruned(timestamps []time.Time, now time.Time, window time.Duration) []time.Time {
	recent := timestamps[:0:len(timestamps)]
	for _, ts := range timestamps {
		if now.Sub(ts) < window {
			recent = append(recent, ts)
		}
	}
	return recent
}
