package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const DefaultSessionPrefix = "sess:"

type redisGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

type RedisConfig struct {
	Client redisGetter
	Users  userStore
	Prefix string
}

// RedisSessionResolver reads sessions from a Redis session store, where the
// key TTL handles expiry.
type RedisSessionResolver struct {
	client redisGetter
	users  userStore
	prefix string
}

func NewRedisSessionResolver(cfg RedisConfig) *RedisSessionResolver {
	r := &RedisSessionResolver{
		client: cfg.Client,
		users:  cfg.Users,
		prefix: cfg.Prefix,
	}
	if r.prefix == "" {
		r.prefix = DefaultSessionPrefix
	}
	return r
}

func (r *RedisSessionResolver) Resolve(ctx context.Context, sid string) (Identity, error) {
	const fn = "RedisSessionResolver:Resolve"

	data, err := r.client.Get(ctx, r.prefix+sid).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Identity{}, fmt.Errorf("%s:%w: unknown or expired session", fn, ErrUnauthorized)
		}
		return Identity{}, fmt.Errorf("%s:%w:%w", fn, ErrResolve, err)
	}
	return identityFromSession(ctx, fn, r.users, data)
}
