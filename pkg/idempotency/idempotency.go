// Package idempotency deduplicates at-least-once message deliveries with Redis SETNX.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/freshcart-backend/pkg/redis"
)

// Guard remembers which messages a consumer has handled.
// Keys follow `fc:idempotency:msg:<consumer>:<message_id>`.
type Guard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

// NewGuard builds a guard whose claims expire after ttl.
func NewGuard(store redis.IdempotencyStore, ttl time.Duration) (*Guard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl <= 0 {
		return nil, errors.New("ttl must be positive")
	}
	return &Guard{store: store, ttl: ttl}, nil
}

// Claim marks the message as handled by consumer. It returns false when an
// earlier delivery already claimed it.
func (g *Guard) Claim(ctx context.Context, consumer string, messageID uuid.UUID) (bool, error) {
	key, err := g.key(consumer, messageID)
	if err != nil {
		return false, err
	}
	return g.store.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), g.ttl)
}

// Release forgets a claim so a redelivery is processed again.
func (g *Guard) Release(ctx context.Context, consumer string, messageID uuid.UUID) error {
	key, err := g.key(consumer, messageID)
	if err != nil {
		return err
	}
	return g.store.Del(ctx, key)
}

func (g *Guard) key(consumer string, messageID uuid.UUID) (string, error) {
	if consumer == "" {
		return "", errors.New("consumer name is required")
	}
	if messageID == uuid.Nil {
		return "", errors.New("message id is required")
	}
	return g.store.IdempotencyKey(fmt.Sprintf("msg:%s", consumer), messageID.String()), nil
}
