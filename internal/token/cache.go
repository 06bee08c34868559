package token

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const cachePrefix = "roleguard:grant:"

// Cache keeps resolved grants in Redis, keyed by the token hash, for at most
// TTL and never past the token's expiry. Redis failures fall through to Next.
type Cache struct {
	next   Grants
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

func NewCache(next Grants, rdb redis.Cmdable, ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{next: next, rdb: rdb, ttl: ttl, logger: logger, now: time.Now}
}

func (c *Cache) Grant(ctx context.Context, raw string) (*Grant, error) {
	key := cacheKey(raw)

	b, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var g Grant
		if err := json.Unmarshal(b, &g); err == nil {
			return &g, nil
		}
		c.logger.Warn("grant_cache_decode", "key", key)
	case errors.Is(err, redis.Nil):
	default:
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn("grant_cache_get", "err", err)
	}

	g, err := c.next.Grant(ctx, raw)
	if err != nil || g == nil {
		return g, err
	}

	ttl := c.ttl
	if g.ExpiresAt > 0 {
		if left := time.Unix(g.ExpiresAt, 0).Sub(c.now()); left < ttl {
			ttl = left
		}
	}
	if ttl <= 0 {
		return g, nil
	}
	if b, err := json.Marshal(g); err == nil {
		if err := c.rdb.Set(ctx, key, b, ttl).Err(); err != nil {
			c.logger.Warn("grant_cache_set", "err", err)
		}
	}
	return g, nil
}

// cacheKey hashes the token so raw values never reach Redis.
func cacheKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return cachePrefix + base64.RawURLEncoding.EncodeToString(sum[:])
}
