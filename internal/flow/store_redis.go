package flow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"gatehouse/pkg/platform/sentinel"
)

// Redis stores flow sessions with a TTL matching their expiry, so abandoned
// kiosk and invitation sessions clean themselves up.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func flowKey(token string) string {
	return "flow:" + token
}

func (s *Redis) Save(ctx context.Context, state *State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal flow state: %w", err)
	}

	ttl := time.Until(state.ExpiresAt)
	if ttl <= 0 {
		return sentinel.ErrExpired
	}
	if err := s.client.Set(ctx, flowKey(state.Token), payload, ttl).Err(); err != nil {
		return fmt.Errorf("save flow state: %w", err)
	}
	return nil
}

func (s *Redis) Find(ctx context.Context, token string) (*State, error) {
	payload, err := s.client.Get(ctx, flowKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find flow state: %w", err)
	}

	var state State
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("unmarshal flow state: %w", err)
	}
	return &state, nil
}

func (s *Redis) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, flowKey(token)).Err(); err != nil {
		return fmt.Errorf("delete flow state: %w", err)
	}
	return nil
}
