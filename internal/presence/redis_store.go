package presence

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds the redis connection settings.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// Redis key patterns:
// {prefix}:room:{room}:members            SET<conn_id>
// {prefix}:instance:{instance}:members    SET<conn_id NUL room>

const memberSep = "\x00"

// RedisStore keeps room membership in redis sets so several server
// processes report the same occupancy. Each process records what it added
// under its instance id and drops those entries when it starts again.
type RedisStore struct {
	client   *redis.Client
	prefix   string
	instance string
}

// NewRedisStore connects to redis, verifies the connection and clears
// memberships left behind by a previous run of this instance.
func NewRedisStore(cfg RedisConfig, prefix, instance string) (*RedisStore, error) {
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

	store, err := NewRedisStoreFromClient(ctx, client, prefix, instance)
	if err != nil {
		client.Close()
		return nil, err
	}
	return store, nil
}

// NewRedisStoreFromClient wraps an existing client and clears this
// instance's stale memberships. An empty instance defaults to the hostname.
// Close closes the client.
func NewRedisStoreFromClient(ctx context.Context, client *redis.Client, prefix, instance string) (*RedisStore, error) {
	if instance == "" {
		instance, _ = os.Hostname()
		if instance == "" {
			instance = "default"
		}
	}
	s := &RedisStore{client: client, prefix: prefix, instance: instance}
	if err := s.reset(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *RedisStore) membersKey(room string) string {
	return fmt.Sprintf("%s:room:%s:members", s.prefix, room)
}

func (s *RedisStore) instanceKey() string {
	return fmt.Sprintf("%s:instance:%s:members", s.prefix, s.instance)
}

func (s *RedisStore) reset(ctx context.Context) error {
	entries, err := s.client.SMembers(ctx, s.instanceKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to load stale room members: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, entry := range entries {
			connID, room, ok := strings.Cut(entry, memberSep)
			if !ok {
				continue
			}
			pipe.SRem(ctx, s.membersKey(room), connID)
		}
		pipe.Del(ctx, s.instanceKey())
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear stale room members: %w", err)
	}
	return nil
}

func (s *RedisStore) Add(ctx context.Context, room, connID string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, s.membersKey(room), connID)
		pipe.SAdd(ctx, s.instanceKey(), connID+memberSep+room)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to add room member: %w", err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, room, connID string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SRem(ctx, s.membersKey(room), connID)
		pipe.SRem(ctx, s.instanceKey(), connID+memberSep+room)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove room member: %w", err)
	}
	return nil
}

func (s *RedisStore) Count(ctx context.Context, room string) (int64, error) {
	n, err := s.client.SCard(ctx, s.membersKey(room)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count room members: %w", err)
	}
	return n, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
