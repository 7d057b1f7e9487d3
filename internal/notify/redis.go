package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tcsgo-engine/internal/model"

	"github.com/redis/go-redis/v9"
)

const (
	// ResultChannel is the pub/sub channel envelopes are pushed to.
	ResultChannel = "tcsgo:results"

	// resultKeyPrefix is the key prefix of the polled result slots.
	resultKeyPrefix = "tcsgo:result:"

	// dedupKeyPrefix is the key prefix of the eventId dedup markers.
	dedupKeyPrefix = "tcsgo:event:"
)

// RedisNotifier publishes result envelopes over redis pub/sub, so callers
// on other processes (the chat bot, overlays) observe outcomes.
type RedisNotifier struct {
	client *redis.Client
}

// NewRedisNotifier creates a redis-backed push notifier.
func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

// Notify publishes the envelope on the result channel.
func (n *RedisNotifier) Notify(ctx context.Context, env *model.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to serialize envelope: %w", err)
	}
	if err := n.client.Publish(ctx, ResultChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish result: %w", err)
	}
	return nil
}

// RedisResultSlot stores the latest envelope per eventId in redis with a TTL.
type RedisResultSlot struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisResultSlot creates a redis-backed result slot.
func NewRedisResultSlot(client *redis.Client, ttl time.Duration) *RedisResultSlot {
	return &RedisResultSlot{client: client, ttl: ttl}
}

// Put stores the envelope under its eventId.
func (s *RedisResultSlot) Put(ctx context.Context, env *model.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to serialize envelope: %w", err)
	}
	key := resultKeyPrefix + env.EventID
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}
	return nil
}

// Get retrieves the envelope for an eventId, or ErrNoResult.
func (s *RedisResultSlot) Get(ctx context.Context, eventID string) (*model.Envelope, error) {
	data, err := s.client.Get(ctx, resultKeyPrefix+eventID).Bytes()
	if err == redis.Nil {
		return nil, ErrNoResult
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	var env model.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse stored result: %w", err)
	}
	return &env, nil
}

// RedisDeduper marks eventIds as seen via SETNX with a retention window.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDeduper creates a redis-backed dedup hook.
func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{client: client, ttl: ttl}
}

// Seen records the eventId, reporting whether it was already recorded.
func (d *RedisDeduper) Seen(ctx context.Context, eventID string) (bool, error) {
	set, err := d.client.SetNX(ctx, dedupKeyPrefix+eventID, 1, d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record event: %w", err)
	}
	return !set, nil
}

var (
	_ Notifier   = (*RedisNotifier)(nil)
	_ ResultSlot = (*RedisResultSlot)(nil)
	_ Deduper    = (*RedisDeduper)(nil)
)
