package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// 默认键前缀和过期时间
const (
	DefaultKeyPrefix = "shopee:counts:"
	DefaultCountTTL  = 2 * time.Minute
)

// Config Redis 连接配置
type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

// CountCache 基于 Redis 的状态计数缓存
// 只缓存 countByStatus 的结果，不缓存商品数据
type CountCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    *zap.Logger
}

// NewCountCache 连接 Redis 并创建计数缓存
func NewCountCache(cfg Config, logger *zap.Logger) (*CountCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewCountCacheWithClient(client, cfg.KeyPrefix, cfg.TTL, logger), nil
}

// NewCountCacheWithClient 使用已有的 Redis 客户端
func NewCountCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration, logger *zap.Logger) *CountCache {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultCountTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CountCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		logger:    logger,
	}
}

// GetCounts 读取缓存，未命中时第二个返回值为 false
func (c *CountCache) GetCounts(ctx context.Context, key string) (map[string]int, bool, error) {
	raw, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read counts from Redis: %w", err)
	}

	var counts map[string]int
	if err := json.Unmarshal(raw, &counts); err != nil {
		// 损坏的缓存视为未命中
		c.logger.Warn("discarding undecodable cached counts",
			zap.String("key", c.keyPrefix+key),
			zap.Error(err),
		)
		return nil, false, nil
	}

	c.logger.Debug("count cache hit", zap.String("key", c.keyPrefix+key))
	return counts, true, nil
}

// SetCounts 写入缓存
func (c *CountCache) SetCounts(ctx context.Context, key string, counts map[string]int) error {
	raw, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("failed to encode counts: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write counts to Redis: %w", err)
	}
	return nil
}

// Close 关闭 Redis 客户端
func (c *CountCache) Close() error {
	return c.client.Close()
}
