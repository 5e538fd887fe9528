package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hyperjump/tanya/internal/vector"
	"github.com/hyperjump/tanya/pkg/utils"
)

const redisKeyPrefix = "tanya:emb:"

// RedisCache stores embeddings in Redis so several processes share encoder work.
// Values are little-endian float32 blobs under a hash of namespace and text.
type RedisCache struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
	logger    *zap.Logger
}

// NewRedisCache connects to addr and verifies the connection with PING. namespace separates
// entries produced by different models.
func NewRedisCache(ctx context.Context, addr, namespace string, ttl time.Duration, logger *zap.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 2 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &RedisCache{
		client:    client,
		namespace: namespace,
		ttl:       ttl,
		logger:    utils.OrNop(logger),
	}, nil
}

// Get returns the cached embedding for text. Errors other than a miss are logged and treated as a miss.
func (c *RedisCache) Get(ctx context.Context, text string) ([]float32, bool) {
	b, err := c.client.Get(ctx, c.key(text)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("redis cache get failed", zap.Error(err))
		}
		return nil, false
	}
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, false
	}
	return vector.DecodeFloat32s(b), true
}

// Set stores the embedding for text with the configured TTL (0 = no expiry).
func (c *RedisCache) Set(ctx context.Context, text string, value []float32) {
	if err := c.client.Set(ctx, c.key(text), vector.EncodeFloat32s(value), c.ttl).Err(); err != nil {
		c.logger.Warn("redis cache set failed", zap.Error(err))
	}
}

// Close closes the Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) key(text string) string {
	return redisCacheKey(c.namespace, text)
}

func redisCacheKey(namespace, text string) string {
	sum := sha256.Sum256([]byte(namespace + "\x00" + text))
	return redisKeyPrefix + hex.EncodeToString(sum[:])
}
