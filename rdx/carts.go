package rdx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/cart"

	"github.com/redis/go-redis/v9"
)

// CartStore keeps carts as JSON under cart:<id>; every save slides the TTL.
type CartStore struct {
	Conn *redis.Client
	TTL  time.Duration
}

func cartKey(id string) string { return "cart:" + id }

func (s *CartStore) Get(ctx context.Context, id string) (*cart.Cart, error) {
	raw, err := s.Conn.Get(ctx, cartKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, cart.ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cart %s: %w", id, err)
	}

	var c cart.Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", id, err)
	}
	return &c, nil
}

func (s *CartStore) Save(ctx context.Context, c *cart.Cart) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", c.ID, err)
	}
	return s.Conn.Set(ctx, cartKey(c.ID), raw, s.TTL).Err()
}

func (s *CartStore) Delete(ctx context.Context, id string) error {
	return s.Conn.Del(ctx, cartKey(id)).Err()
}

var _ cart.Store = (*CartStore)(nil)
