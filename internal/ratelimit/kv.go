package ratelimit

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// KVStore keeps entries in a NATS JetStream key-value bucket so several
// instances share one view. Updates are last-write-wins between instances.
type KVStore struct {
	kv jetstream.KeyValue
}

// NewKVStore creates or updates the bucket. ttl bounds how long an idle
// entry survives if no sweep removes it; it should be at least the longest
// rule window.
func NewKVStore(ctx context.Context, js jetstream.JetStream, bucket string, ttl time.Duration) (*KVStore, error) {
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "grantdesk rate limit counters",
		TTL:         ttl,
		History:     1,
		Storage:     jetstream.MemoryStorage,
	})
	if err != nil {
		return nil, fmt.Errorf("create key-value bucket %s: %w", bucket, err)
	}
	return &KVStore{kv: kv}, nil
}

// NewKVStoreFromBucket wraps an existing bucket.
func NewKVStoreFromBucket(kv jetstream.KeyValue) *KVStore {
	return &KVStore{kv: kv}
}

// kvKey maps an arbitrary limiter key onto the bucket's key alphabet.
func kvKey(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}

func (s *KVStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	kve, err := s.kv.Get(ctx, kvKey(key))
	if errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}

	var e Entry
	if err := json.Unmarshal(kve.Value(), &e); err != nil {
		return Entry{}, false, fmt.Errorf("decode entry: %w", err)
	}
	return e, true, nil
}

func (s *KVStore) Set(ctx context.Context, key string, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = s.kv.Put(ctx, kvKey(key), data)
	return err
}

func (s *KVStore) Sweep(ctx context.Context, now time.Time) (int, error) {
	keys, err := s.kv.Keys(ctx)
	if errors.Is(err, jetstream.ErrNoKeysFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, key := range keys {
		kve, err := s.kv.Get(ctx, key)
		if err != nil {
			// Deleted or expired between listing and reading.
			if errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted) {
				continue
			}
			return removed, err
		}

		var e Entry
		if err := json.Unmarshal(kve.Value(), &e); err == nil && !e.Expired(now) {
			continue
		}
		if err := s.kv.Delete(ctx, key); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
