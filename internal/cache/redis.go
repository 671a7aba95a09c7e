package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps entries as plain string keys and each tag as a Redis set
// of the keys carrying it.  Several application instances can share one
// store; a flush racing with a set can leave a stale entry that lives until
// its TTL runs out.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(k string) string { return s.prefix + ":c:" + k }
func (s *RedisStore) tag(t string) string { return s.prefix + ":t:" + t }

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, val []byte, ttl time.Duration, tags []string) error {
	full := s.key(key)
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, full, val, ttl)
		for _, t := range tags {
			p.SAdd(ctx, s.tag(t), full)
			// tag sets outlive their members by one TTL at most
			p.Expire(ctx, s.tag(t), 2*ttl)
		}
		return nil
	})
	return err
}

func (s *RedisStore) Flush(ctx context.Context, tags ...string) error {
	for _, t := range tags {
		tk := s.tag(t)
		keys, err := s.rdb.SMembers(ctx, tk).Result()
		if err != nil {
			return err
		}
		keys = append(keys, tk)
		if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
			return err
		}
	}
	return nil
}
