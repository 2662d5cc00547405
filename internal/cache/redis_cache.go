package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Abhishekshinde12/Conv-AI/internal/config"
	"github.com/Abhishekshinde12/Conv-AI/internal/domain"
)

// RedisTranscriptCache implements TranscriptCache on redis.
type RedisTranscriptCache struct {
	client *redis.Client
	prefix string
}

func NewRedisTranscriptCache(cfg config.RedisConfig) (*RedisTranscriptCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisTranscriptCache{
		client: client,
		prefix: cfg.CachePrefix,
	}, nil
}

func (c *RedisTranscriptCache) key(conversationID string) string {
	return fmt.Sprintf("%s:%s", c.prefix, conversationID)
}

func (c *RedisTranscriptCache) Get(ctx context.Context, conversationID string) ([]domain.Message, error) {
	data, err := c.client.Get(ctx, c.key(conversationID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var messages []domain.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}

	return messages, nil
}

func (c *RedisTranscriptCache) Set(ctx context.Context, conversationID string, messages []domain.Message, ttl time.Duration) error {
	data, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	if err := c.client.Set(ctx, c.key(conversationID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}

	return nil
}

func (c *RedisTranscriptCache) Invalidate(ctx context.Context, conversationID string) error {
	if err := c.client.Del(ctx, c.key(conversationID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate in redis: %w", err)
	}
	return nil
}

func (c *RedisTranscriptCache) Close() error {
	return c.client.Close()
}
