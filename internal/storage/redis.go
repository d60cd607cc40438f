package storage

import (
	"context"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const redisTimeout = 500 * time.Millisecond

type RedisStorage struct {
	rdb *redis.Client
}

func NewRedisStorage(addr string, db int) *RedisStorage {
	if addr == "" {
		addr = "localhost:6379"
	}
	return &RedisStorage{rdb: redis.NewClient(&redis.Options{Addr: addr, DB: db})}
}

func (s *RedisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisStorage) Set(ctx context.Context, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	return s.rdb.Set(ctx, key, value, 0).Err()
}

func (s *RedisStorage) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStorage) Close() error { return s.rdb.Close() }
