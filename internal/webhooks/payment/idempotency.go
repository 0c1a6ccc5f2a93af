package paymentwebhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/borrowhub/borrowhub-backend/pkg/redis"
)

// IdempotencyGuard deduplicates webhook deliveries by event id. An event is
// marked only after the handler has durably processed it, so a crash between
// receipt and commit leaves no key and the gateway's retry is reprocessed.
// The guard is a transport-level shortcut; the authoritative gate remains the
// rental's payment status, so a lost redis key never causes a double apply.
type IdempotencyGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	scope string
}

func NewIdempotencyGuard(store redis.IdempotencyStore, ttl time.Duration, scope string) (*IdempotencyGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if scope == "" {
		return nil, errors.New("scope is required")
	}
	return &IdempotencyGuard{
		store: store,
		ttl:   ttl,
		scope: scope,
	}, nil
}

// Seen reports whether the event was already processed to completion.
func (g *IdempotencyGuard) Seen(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, errors.New("event id is required")
	}
	key := g.store.IdempotencyKey(g.scope, eventID)
	value, err := g.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("get idempotency key: %w", err)
	}
	return value != "", nil
}

// Mark records the event as processed. Call only after the handler committed.
func (g *IdempotencyGuard) Mark(ctx context.Context, eventID string) error {
	if eventID == "" {
		return errors.New("event id is required")
	}
	key := g.store.IdempotencyKey(g.scope, eventID)
	if _, err := g.store.SetNX(ctx, key, "1", g.ttl); err != nil {
		return fmt.Errorf("set idempotency key: %w", err)
	}
	return nil
}
