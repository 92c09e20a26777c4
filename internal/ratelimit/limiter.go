// Package ratelimit implements a fixed-window request counter over the
// key-value store, keyed per (action, subject) pair.
package ratelimit

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"soundmap/internal/kv"
	"soundmap/internal/observability"
)

const keyPrefix = "rate_limit:"

// UploadPolicy is the default quota applied to audio uploads per user.
var UploadPolicy = Policy{MaxRequests: 10, Window: time.Hour}

// Policy is a bounded number of requests per fixed window.
type Policy struct {
	MaxRequests int
	Window      time.Duration
}

// Result reports the outcome of a quota check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// counter is the persisted window state. ResetAt is epoch milliseconds so the
// record round-trips identically across store backends.
type counter struct {
	Count   int   `json:"count"`
	ResetAt int64 `json:"reset_at"`
}

// Limiter checks and consumes quota. The read-modify-write sequence is not
// atomic across concurrent requests for the same key; under a concurrent burst
// the effective limit can be exceeded by a small margin. That is an accepted
// tradeoff: the limiter deters abuse, it is not a hard quota.
type Limiter struct {
	kv  kv.Store
	now func() time.Time
}

// NewLimiter returns a limiter over the given key-value store.
func NewLimiter(store kv.Store) *Limiter {
	return &Limiter{kv: store, now: time.Now}
}

// CheckAndConsume consumes one request from the window for key, lazily
// starting a new window when none exists or the previous one has passed.
// A request at the cap is rejected without incrementing the counter.
func (l *Limiter) CheckAndConsume(ctx context.Context, key string, policy Policy) (Result, error) {
	now := l.now()

	state := counter{Count: 0, ResetAt: now.Add(policy.Window).UnixMilli()}
	data, err := l.kv.Get(ctx, keyPrefix+key)
	if err != nil {
		return Result{}, err
	}
	if data != nil {
		var stored counter
		if err := json.Unmarshal(data, &stored); err == nil && now.UnixMilli() < stored.ResetAt {
			state = stored
		}
		// Corrupt or expired records fall through to the fresh window.
	}

	resetAt := time.UnixMilli(state.ResetAt)

	if state.Count >= policy.MaxRequests {
		// Label with the action prefix only; the subject part carries user IDs
		// and IPs, which must not become metric label values.
		scope := key
		if i := strings.IndexByte(key, ':'); i > 0 {
			scope = key[:i]
		}
		observability.RateLimitRejections.WithLabelValues(scope).Inc()
		return Result{Allowed: false, Remaining: 0, ResetAt: resetAt}, nil
	}

	state.Count++
	ttl := time.Duration(state.ResetAt-now.UnixMilli()) * time.Millisecond
	ttl = ttl.Truncate(time.Second) + time.Second // round up to whole seconds
	encoded, err := json.Marshal(state)
	if err != nil {
		return Result{}, err
	}
	if err := l.kv.Put(ctx, keyPrefix+key, encoded, ttl); err != nil {
		return Result{}, err
	}

	return Result{
		Allowed:   true,
		Remaining: policy.MaxRequests - state.Count,
		ResetAt:   resetAt,
	}, nil
}
