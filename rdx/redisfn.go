package rdx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by lookups for keys that are absent or expired.
var ErrMiss = errors.New("redis: key not found")

// Connect opens a client and pings it.
func Connect(ctx context.Context, addr, password string, database int) (*redis.Client, error) {
	conn := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       database,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.Ping(ctx).Err(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return conn, nil
}

// ReportCache keeps rendered report summaries under report:<store>:<start>:<end>.
type ReportCache struct {
	Conn *redis.Client
	TTL  time.Duration
}

func ReportKey(storeID, start, end string) string {
	return "report:" + storeID + ":" + start + ":" + end
}

func (c *ReportCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.Conn.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return b, err
}

func (c *ReportCache) Set(ctx context.Context, key string, value []byte) error {
	return c.Conn.Set(ctx, key, value, c.TTL).Err()
}

// InvalidateStore drops every cached report of storeID and returns how many went.
func (c *ReportCache) InvalidateStore(ctx context.Context, storeID string) (int, error) {
	var (
		cursor  uint64
		removed int
	)
	pattern := "report:" + storeID + ":*"
	for {
		keys, next, err := c.Conn.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return removed, fmt.Errorf("scan %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			n, err := c.Conn.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("del report keys: %w", err)
			}
			removed += int(n)
		}
		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}
