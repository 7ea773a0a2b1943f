package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (Entry, bool, error) {
	return Entry{}, false, errors.New("store down")
}
func (brokenStore) Set(context.Context, string, Entry) error { return errors.New("store down") }
func (brokenStore) Sweep(context.Context, time.Time) (int, error) {
	return 0, errors.New("store down")
}

var strict = Rule{Name: "strict", Limit: 5, Window: 60 * time.Second}

func TestCheckAllowsUpToLimitThenDenies(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(NewMemoryStore(), zap.NewNop(), WithClock(clock.Now))
	ctx := context.Background()

	for i := 1; i <= strict.Limit; i++ {
		d := l.Check(ctx, "user:alice", strict)
		require.True(t, d.Allowed, "request %d", i)
		assert.Equal(t, strict.Limit-i, d.Remaining)
		assert.Equal(t, 5, d.Limit)
	}

	clock.Advance(10 * time.Second)
	d := l.Check(ctx, "user:alice", strict)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, 50, d.RetryAfter)

	// Another identity has its own budget.
	assert.True(t, l.Check(ctx, "user:bob", strict).Allowed)
	// And another rule class.
	assert.True(t, l.Check(ctx, "user:alice", Rule{Name: "moderate", Limit: 10, Window: 10 * time.Second}).Allowed)
}

func TestCheckResetsAfterWindow(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(NewMemoryStore(), zap.NewNop(), WithClock(clock.Now))
	ctx := context.Background()

	for i := 0; i < strict.Limit; i++ {
		l.Check(ctx, "ip:10.0.0.1", strict)
	}
	require.False(t, l.Check(ctx, "ip:10.0.0.1", strict).Allowed)

	clock.Advance(strict.Window)
	d := l.Check(ctx, "ip:10.0.0.1", strict)
	assert.True(t, d.Allowed)
	assert.Equal(t, strict.Limit-1, d.Remaining)
	assert.Equal(t, clock.Now().Add(strict.Window), d.ResetAt)
}

func TestRetryAfterRoundsUp(t *testing.T) {
	clock := newFakeClock()
	rule := Rule{Name: "moderate", Limit: 1, Window: 10 * time.Second}
	l := NewLimiter(NewMemoryStore(), zap.NewNop(), WithClock(clock.Now))
	ctx := context.Background()

	l.Check(ctx, "user:alice", rule)
	clock.Advance(9*time.Second + 500*time.Millisecond)
	d := l.Check(ctx, "user:alice", rule)
	assert.False(t, d.Allowed)
	assert.Equal(t, 1, d.RetryAfter)
}

func TestCheckFailsOpen(t *testing.T) {
	l := NewLimiter(brokenStore{}, zap.NewNop())
	for i := 0; i < 20; i++ {
		assert.True(t, l.Check(context.Background(), "user:alice", strict).Allowed)
	}
}

func TestConcurrentChecksNeverExceedLimit(t *testing.T) {
	l := NewLimiter(NewMemoryStore(), zap.NewNop())
	rule := Rule{Name: "moderate", Limit: 10, Window: time.Minute}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Check(context.Background(), "user:alice", rule).Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, rule.Limit, allowed)
}

func TestSweepRemovesElapsedEntries(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore()
	l := NewLimiter(store, zap.NewNop(), WithClock(clock.Now))
	ctx := context.Background()

	l.Check(ctx, "user:alice", Rule{Name: "moderate", Limit: 10, Window: 10 * time.Second})
	l.Check(ctx, "user:bob", strict)
	require.Equal(t, 2, store.Len())

	clock.Advance(10 * time.Second)
	removed, err := l.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Len())
}

func TestProperty_FixedWindowBoundary(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("exactly limit requests pass within one window", prop.ForAll(
		func(limit, windowSecs, requests int) bool {
			clock := newFakeClock()
			l := NewLimiter(NewMemoryStore(), zap.NewNop(), WithClock(clock.Now))
			rule := Rule{Name: "p", Limit: limit, Window: time.Duration(windowSecs) * time.Second}

			allowed := 0
			for i := 0; i < requests; i++ {
				d := l.Check(context.Background(), "user:p", rule)
				if d.Allowed {
					allowed++
					continue
				}
				if d.RetryAfter < 1 || d.RetryAfter > windowSecs {
					return false
				}
			}
			return allowed == min(limit, requests)
		},
		gen.IntRange(1, 30),
		gen.IntRange(1, 120),
		gen.IntRange(0, 60),
	))

	properties.Property("the window resets once it has fully elapsed", prop.ForAll(
		func(limit, windowSecs int) bool {
			clock := newFakeClock()
			l := NewLimiter(NewMemoryStore(), zap.NewNop(), WithClock(clock.Now))
			rule := Rule{Name: "p", Limit: limit, Window: time.Duration(windowSecs) * time.Second}

			for i := 0; i <= limit; i++ {
				l.Check(context.Background(), "user:p", rule)
			}
			clock.Advance(rule.Window - time.Millisecond)
			if l.Check(context.Background(), "user:p", rule).Allowed {
				return false
			}
			clock.Advance(time.Millisecond)
			return l.Check(context.Background(), "user:p", rule).Allowed
		},
		gen.IntRange(1, 30),
		gen.IntRange(1, 120),
	))

	properties.TestingRun(t)
}
