// Package dedup holds positive-only lookaside caches for the idempotency
// ledger. A key is only ever written after the ledger row committed, so a
// hit is always safe to ack and a miss always falls through to the ledger.
package dedup

import (
	"context"
	"fmt"
	"time"
)

type Cache interface {
	Seen(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string) error
}

// Key formats the ledger key of one charge transition.
func Key(chargeId, chargeStatus string) string {
	return fmt.Sprintf("%s:%s", chargeId, chargeStatus)
}

// Tiered consults caches in order and marks all of them. Errors from a
// cache are returned so the caller can log and fall back to the ledger.
type Tiered struct {
	caches []Cache
}

func NewTiered(caches ...Cache) *Tiered {
	return &Tiered{caches: caches}
}

func (t *Tiered) Seen(ctx context.Context, key string) (bool, error) {
	for _, c := range t.caches {
		hit, err := c.Seen(ctx, key)
		if err != nil {
			return false, err
		}
		if hit {
			return true, nil
		}
	}
	return false, nil
}

func (t *Tiered) Mark(ctx context.Context, key string) error {
	var firstErr error
	for _, c := range t.caches {
		if err := c.Mark(ctx, key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Nop never hits. Used when caching is disabled.
type Nop struct{}

func (Nop) Seen(context.Context, string) (bool, error) { return false, nil }
func (Nop) Mark(context.Context, string) error         { return nil }

const defaultTTL = 24 * time.Hour
