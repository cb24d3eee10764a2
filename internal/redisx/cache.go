package redisx

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache is the cache-aside contract query services read through and command
// services invalidate through. Misses and transport errors are both reported
// as "not cached": the caller falls back to the query repository either way.
type Cache interface {
	Get(ctx context.Context, key string, out any) bool
	Set(ctx context.Context, key string, v any, ttl time.Duration)
	Del(ctx context.Context, keys ...string)
	DelPrefix(ctx context.Context, prefix string)
}

type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store { return &Store{rdb: rdb} }

func (s *Store) Get(ctx context.Context, key string, out any) bool {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			zap.L().Error("redis get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		zap.L().Error("corrupt cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Store) Set(ctx context.Context, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		zap.L().Error("cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		zap.L().Error("redis set failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Store) Del(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		zap.L().Error("redis del failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// DelPrefix walks the keyspace with SCAN; the entity keyspaces are small
// enough (bounded page/size/search combinations within one TTL window) that
// this stays cheap.
func (s *Store) DelPrefix(ctx context.Context, prefix string) {
	iter := s.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		zap.L().Error("redis scan failed", zap.String("prefix", prefix), zap.Error(err))
		return
	}
	s.Del(ctx, keys...)
}
