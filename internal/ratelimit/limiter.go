package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/suteetoe/grantdesk/prometheus"
	"go.uber.org/zap"
)

// Limiter applies fixed-window limits per identity and rule.
type Limiter struct {
	mu    sync.Mutex
	store Store
	now   func() time.Time
	log   *zap.Logger
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// NewLimiter creates a Limiter over store.
func NewLimiter(store Store, log *zap.Logger, opts ...Option) *Limiter {
	l := &Limiter{store: store, now: time.Now, log: log}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check counts one request from identity against rule. A store failure is
// logged and the request allowed.
func (l *Limiter) Check(ctx context.Context, identity string, rule Rule) Decision {
	key := rule.Name + ":" + identity

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok, err := l.store.Get(ctx, key)
	if err != nil {
		return l.failOpen(rule, key, now, err)
	}

	switch {
	case !ok || entry.Expired(now):
		entry = Entry{Count: 1, ResetAt: now.Add(rule.Window)}
	case entry.Count < rule.Limit:
		entry.Count++
	default:
		prometheus.RecordRateLimit(rule.Name, "deny")
		return Decision{
			Allowed:    false,
			Limit:      rule.Limit,
			Remaining:  0,
			ResetAt:    entry.ResetAt,
			RetryAfter: retryAfter(entry.ResetAt.Sub(now), rule.Window),
		}
	}

	if err := l.store.Set(ctx, key, entry); err != nil {
		return l.failOpen(rule, key, now, err)
	}

	prometheus.RecordRateLimit(rule.Name, "allow")
	return Decision{
		Allowed:   true,
		Limit:     rule.Limit,
		Remaining: max(rule.Limit-entry.Count, 0),
		ResetAt:   entry.ResetAt,
	}
}

// Sweep removes elapsed entries from the store.
func (l *Limiter) Sweep(ctx context.Context) (int, error) {
	removed, err := l.store.Sweep(ctx, l.now())
	if removed > 0 {
		prometheus.RateLimitSwept.Add(float64(removed))
	}
	return removed, err
}

func (l *Limiter) failOpen(rule Rule, key string, now time.Time, err error) Decision {
	l.log.Error("Rate limit store failed, allowing request",
		zap.String("rule", rule.Name),
		zap.String("key", key),
		zap.Error(err))
	prometheus.RecordRateLimit(rule.Name, "error")

	return Decision{
		Allowed:   true,
		Limit:     rule.Limit,
		Remaining: max(rule.Limit-1, 0),
		ResetAt:   now.Add(rule.Window),
	}
}

// retryAfter rounds d up to whole seconds, within [1, window].
func retryAfter(d, window time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	upper := int((window + time.Second - 1) / time.Second)
	return min(max(secs, 1), max(upper, 1))
}
