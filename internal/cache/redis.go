package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	redis "github.com/go-redis/redis/v8"

	"github.com/smartsplit/expense-splitter/internal/models"
)

const entryTTL = 5 * time.Second

type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(addr string) *RedisCache {
	return &RedisCache{rdb: redis.NewClient(&redis.Options{Addr: addr})}
}

func key(groupID string) string { return "balances:" + groupID }

func (c *RedisCache) GetGroupBalances(ctx context.Context, groupID string) ([]models.BalanceEntry, bool) {
	val, err := c.rdb.Get(ctx, key(groupID)).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("redis get", "err", err)
		return nil, false
	}
	var entries []models.BalanceEntry
	if err := json.Unmarshal([]byte(val), &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (c *RedisCache) SetGroupBalances(ctx context.Context, groupID string, entries []models.BalanceEntry) {
	b, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key(groupID), b, entryTTL).Err(); err != nil {
		slog.Warn("redis set", "err", err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, groupID string) {
	if err := c.rdb.Del(ctx, key(groupID)).Err(); err != nil {
		slog.Warn("redis del", "err", err)
	}
}
