package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/linaspasv/cms/internal/adapter/metrics"
	"github.com/linaspasv/cms/internal/nocache"
	goredis "github.com/redis/go-redis/v9"
)

// NocacheStore persists nocache sessions in Redis.
type NocacheStore struct {
	rdb     goredis.Cmdable
	metrics *metrics.NocacheMetrics
}

var _ nocache.Store = (*NocacheStore)(nil)

func NewNocacheStore(rdb goredis.Cmdable, m *metrics.NocacheMetrics) *NocacheStore {
	return &NocacheStore{rdb: rdb, metrics: m}
}

func (s *NocacheStore) Forever(ctx context.Context, key string, value []byte) error {
	return s.set(ctx, key, value, 0)
}

// Put stores value for ttl. A non-positive ttl removes the key.
func (s *NocacheStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		if err := s.rdb.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
		return nil
	}
	return s.set(ctx, key, value, ttl)
}

func (s *NocacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.rdb.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, goredis.Nil):
		s.metrics.SessionReads.WithLabelValues("miss").Inc()
		return nil, false, nil
	case err != nil:
		s.metrics.SessionReads.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	s.metrics.SessionReads.WithLabelValues("hit").Inc()
	return value, true, nil
}

func (s *NocacheStore) set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		s.metrics.SessionWrites.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	s.metrics.SessionWrites.WithLabelValues("success").Inc()
	s.metrics.StoredBytes.Observe(float64(len(value)))
	return nil
}
