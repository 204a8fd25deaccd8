package ratelimit

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore shares one counter space across instances. Each (key,
// category) maps to a Redis counter whose TTL is the fixed window; INCR
// plus a one-shot PEXPIRE gives the same no-over-admission guarantee the
// in-memory mutex does.
type RedisStore struct {
	client *redis.Client
	limits map[Category]Limit
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		limits: Limits,
	}
}

func (s *RedisStore) Consume(ctx context.Context, key string, cat Category) (Decision, error) {
	limit, ok := s.limits[cat]
	if !ok {
		limit = s.limits[CategoryGeneral]
	}

	bucket := "ratelimit:" + string(cat) + ":" + key

	// INCR crea el contador en 1 si no existe; la primera admisión de la
	// ventana fija el TTL
	count, err := s.client.Incr(ctx, bucket).Result()
	if err != nil {
		return Decision{}, err
	}
	if count == 1 {
		if err := s.client.PExpire(ctx, bucket, limit.Window).Err(); err != nil {
			return Decision{}, err
		}
	}

	ttl, err := s.client.PTTL(ctx, bucket).Result()
	if err != nil {
		return Decision{}, err
	}
	if ttl < 0 {
		// El TTL se perdió (p.ej. expiración entre INCR y PTTL); tratar
		// como ventana recién abierta
		ttl = limit.Window
	}
	resetAt := time.Now().Add(ttl)

	if count > int64(limit.Points) {
		return Decision{
			Allowed:    false,
			Limit:      limit.Points,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: ttl,
		}, nil
	}

	return Decision{
		Allowed:   true,
		Limit:     limit.Points,
		Remaining: limit.Points - int(count),
		ResetAt:   resetAt,
	}, nil
}
