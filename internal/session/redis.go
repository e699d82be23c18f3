package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xaenox/school-bot/internal/models"
)

const keyPrefix = "session:"

// RedisStore keeps each window as a Redis list of JSON turns, oldest at
// the head, so several bot replicas share conversation state.
type RedisStore struct {
	rdb      redis.UniversalClient
	maxTurns int
	ttl      time.Duration
}

// NewRedisStore creates a store on rdb. Windows of idle users expire after
// ttl; zero keeps them forever.
func NewRedisStore(rdb redis.UniversalClient, maxTurns int, ttl time.Duration) *RedisStore {
	return &RedisStore{
		rdb:      rdb,
		maxTurns: maxTurns,
		ttl:      ttl,
	}
}

func key(userID string) string {
	return keyPrefix + userID
}

func (s *RedisStore) Load(ctx context.Context, userID string) (Window, error) {
	raw, err := s.rdb.LRange(ctx, key(userID), 0, -1).Result()
	if err != nil {
		return Window{}, fmt.Errorf("loading session %s: %w", userID, err)
	}

	turns := make([]models.Turn, 0, len(raw))
	for _, item := range raw {
		var t models.Turn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			return Window{}, fmt.Errorf("decoding session %s: %w", userID, err)
		}
		turns = append(turns, t)
	}
	return WindowOf(s.maxTurns, turns), nil
}

// Save replaces the stored list in one MULTI block so readers never see a
// partly written window.
func (s *RedisStore) Save(ctx context.Context, userID string, w Window) error {
	turns := w.Turns()
	values := make([]interface{}, 0, len(turns))
	for _, t := range turns {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("encoding session %s: %w", userID, err)
		}
		values = append(values, data)
	}

	k := key(userID)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, k)
		if len(values) > 0 {
			pipe.RPush(ctx, k, values...)
		}
		if s.ttl > 0 {
			pipe.Expire(ctx, k, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving session %s: %w", userID, err)
	}
	return nil
}
