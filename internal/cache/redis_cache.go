package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/weiawesome/wes-chat/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// RedisConfig holds the redis connection settings.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type RedisPrincipalCache struct {
	client *redis.Client
	prefix string
}

func NewRedisPrincipalCache(cfg RedisConfig, prefix string) (*RedisPrincipalCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisPrincipalCache{
		client: client,
		prefix: prefix,
	}, nil
}

// buildKey never embeds the raw credential in the key space.
func (c *RedisPrincipalCache) buildKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%s:token:%s", c.prefix, hex.EncodeToString(sum[:]))
}

func (c *RedisPrincipalCache) Get(ctx context.Context, token string) (*domain.Principal, error) {
	data, err := c.client.Get(ctx, c.buildKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var principal domain.Principal
	if err := json.Unmarshal(data, &principal); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}

	return &principal, nil
}

func (c *RedisPrincipalCache) Set(ctx context.Context, token string, principal *domain.Principal, ttl time.Duration) error {
	data, err := json.Marshal(principal)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	if err := c.client.Set(ctx, c.buildKey(token), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}

	return nil
}

func (c *RedisPrincipalCache) Delete(ctx context.Context, tokens ...string) error {
	if len(tokens) == 0 {
		return nil
	}

	keys := make([]string, len(tokens))
	for i, token := range tokens {
		keys[i] = c.buildKey(token)
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}

	return nil
}

func (c *RedisPrincipalCache) Close() error {
	return c.client.Close()
}
