package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"passage/internal/auth/models"
	"passage/pkg/platform/sentinel"
)

// Redis key prefix for the session slots, keeping them out of the way of
// other tenants of a shared instance.
const redisKeyPrefix = "passage:"

// RedisStore is the durable implementation for deployments with a Redis
// instance. Slot writes go through MULTI/EXEC so a session is committed as
// one unit; a failed transaction leaves the prior slots untouched.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a Redis-backed session store. The client
// lifecycle is managed by the caller.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(slot string) string { return redisKeyPrefix + slot }

func (s *RedisStore) Save(ctx context.Context, session models.Session) error {
	token, user, associations, err := encodeSession(session)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, redisKey(SlotToken), token, 0)
	pipe.Set(ctx, redisKey(SlotUser), user, 0)
	pipe.Set(ctx, redisKey(SlotAssociations), associations, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session: %v: %w", err, sentinel.ErrUnavailable)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context) (*models.Session, error) {
	values, err := s.client.MGet(ctx,
		redisKey(SlotToken), redisKey(SlotUser), redisKey(SlotAssociations)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("load session: %v: %w", err, sentinel.ErrUnavailable)
	}

	var slots [3]string
	present := 0
	for i, v := range values {
		if str, ok := v.(string); ok {
			slots[i] = str
			present++
		}
	}
	return decodeSession(slots[0], slots[1], slots[2], present)
}

func (s *RedisStore) Clear(ctx context.Context) error {
	err := s.client.Del(ctx,
		redisKey(SlotToken), redisKey(SlotUser), redisKey(SlotAssociations)).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("clear session: %v: %w", err, sentinel.ErrUnavailable)
	}
	return nil
}
