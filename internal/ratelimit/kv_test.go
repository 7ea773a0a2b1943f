package ratelimit

import (
	"context"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestKVKeyAlphabet(t *testing.T) {
	valid := regexp.MustCompile(`^[-/_=\.a-zA-Z0-9]+$`)
	for _, key := range []string{"strict:user:7d1c", "public:ip:2001:db8::1", "moderate:ip:10.0.0.1"} {
		assert.Regexp(t, valid, kvKey(key))
	}
	assert.NotEqual(t, kvKey("strict:user:a"), kvKey("moderate:user:a"))
}

// TestKVStore runs against a live JetStream server when NATS_URL is set.
func TestKVStore(t *testing.T) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("NATS_URL not set")
	}

	nc, err := nats.Connect(url)
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	ctx := context.Background()
	bucket := "ratelimit_test_" + uuid.NewString()[:8]
	store, err := NewKVStore(ctx, js, bucket, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = js.DeleteKeyValue(context.Background(), bucket) })

	_, ok, err := store.Get(ctx, "strict:user:alice")
	require.NoError(t, err)
	assert.False(t, ok)

	clock := newFakeClock()
	l := NewLimiter(store, zap.NewNop(), WithClock(clock.Now))
	for i := 0; i < strict.Limit; i++ {
		require.True(t, l.Check(ctx, "user:alice", strict).Allowed)
	}
	assert.False(t, l.Check(ctx, "user:alice", strict).Allowed)

	clock.Advance(strict.Window)
	removed, err := l.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, ok, err = store.Get(ctx, "strict:user:alice")
	require.NoError(t, err)
	assert.False(t, ok)
}
