package rdx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/middleware"

	"github.com/redis/go-redis/v9"
)

// IdempotencyStore keeps idempotency records under idem:<key>.
type IdempotencyStore struct {
	Conn *redis.Client
}

func idemKey(key string) string { return "idem:" + key }

func (s *IdempotencyStore) Reserve(ctx context.Context, rec middleware.IdempotencyRecord, ttl time.Duration) (bool, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return false, err
	}
	return s.Conn.SetNX(ctx, idemKey(rec.Key), raw, ttl).Result()
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, error) {
	raw, err := s.Conn.Get(ctx, idemKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return middleware.IdempotencyRecord{}, middleware.ErrIdempotencyNotFound
	}
	if err != nil {
		return middleware.IdempotencyRecord{}, fmt.Errorf("get idempotency %s: %w", key, err)
	}

	var rec middleware.IdempotencyRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return middleware.IdempotencyRecord{}, fmt.Errorf("decode idempotency %s: %w", key, err)
	}
	return rec, nil
}

func (s *IdempotencyStore) Complete(ctx context.Context, rec middleware.IdempotencyRecord, ttl time.Duration) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.Conn.Set(ctx, idemKey(rec.Key), raw, ttl).Err()
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.Conn.Del(ctx, idemKey(key)).Err()
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
