package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/salammuloh/fca00c-asteroids/galaxy"
)

// RedisStore keeps world parameters and expiry markers in Redis so several
// servers can share one field.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore connects to url and verifies the connection
func NewRedisStore(ctx context.Context, url, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	log.Printf("redis world store connected (%s)", opts.Addr)
	return &RedisStore{rdb: rdb, prefix: prefix}, nil
}

func (s *RedisStore) key(k galaxy.DataKey) string {
	return s.prefix + k.String()
}

func (s *RedisStore) Get(ctx context.Context, k galaxy.DataKey) (int64, bool, error) {
	v, err := s.rdb.Get(ctx, s.key(k)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

func (s *RedisStore) Has(ctx context.Context, k galaxy.DataKey) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.key(k)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisStore) Set(ctx context.Context, k galaxy.DataKey, value int64) error {
	return s.rdb.Set(ctx, s.key(k), value, 0).Err()
}

// Expire marks p with SETNX so concurrent collectors cannot both win
func (s *RedisStore) Expire(ctx context.Context, p galaxy.Point) (bool, error) {
	return s.rdb.SetNX(ctx, s.key(galaxy.ExpiredKey(p)), 1, 0).Result()
}

// Close releases the connection pool
func (s *RedisStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}
