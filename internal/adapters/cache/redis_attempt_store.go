package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carerelay/carerelay/internal/ports"
)

// RedisAttemptStore implements redemption attempt guarding in Redis. One hash
// per guard key holds a failure counter and an optional lock marker; the key
// TTL set on the first failure bounds the counting window.
type RedisAttemptStore struct {
	client *redis.Client
}

// NewRedisAttemptStore creates an attempt store backed by Redis hashes.
func NewRedisAttemptStore(client *redis.Client) *RedisAttemptStore {
	return &RedisAttemptStore{client: client}
}

func (s *RedisAttemptStore) Get(ctx context.Context, keyHash string) (ports.AttemptState, error) {
	data, err := s.client.HGetAll(ctx, "pairing:attempts:"+keyHash).Result()
	if err != nil {
		return ports.AttemptState{}, err
	}
	if len(data) == 0 {
		return ports.AttemptState{}, nil
	}

	state := ports.AttemptState{}
	if raw, ok := data["failed_count"]; ok {
		if n, convErr := strconv.Atoi(raw); convErr == nil {
			state.FailedCount = n
		}
	}
	if raw, ok := data["locked_until"]; ok && raw != "" {
		if unix, convErr := strconv.ParseInt(raw, 10, 64); convErr == nil && unix > 0 {
			t := time.Unix(unix, 0).UTC()
			state.LockedUntil = &t
		}
	}
	return state, nil
}

func (s *RedisAttemptStore) RecordFailure(ctx context.Context, keyHash string, now time.Time, threshold int, window, lockout time.Duration) (ports.AttemptState, error) {
	redisKey := "pairing:attempts:" + keyHash

	count, err := s.client.HIncrBy(ctx, redisKey, "failed_count", 1).Result()
	if err != nil {
		return ports.AttemptState{}, err
	}

	state := ports.AttemptState{FailedCount: int(count)}
	if int(count) >= threshold {
		// The whole hash expires at locked_until, so when the lockout ends the
		// counter is gone and the next failure starts a fresh count at one.
		lockedUntil := now.Add(lockout).UTC()
		_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, redisKey, "locked_until", lockedUntil.Unix())
			p.Expire(ctx, redisKey, lockout)
			return nil
		})
		if err != nil {
			return ports.AttemptState{}, err
		}
		state.LockedUntil = &lockedUntil
		return state, nil
	}

	// First failure starts the window; later failures inside it must not
	// extend it, so the TTL is only set when absent.
	_ = s.client.ExpireNX(ctx, redisKey, window).Err()
	return state, nil
}

func (s *RedisAttemptStore) Clear(ctx context.Context, keyHash string) error {
	return s.client.Del(ctx, "pairing:attempts:"+keyHash).Err()
}
