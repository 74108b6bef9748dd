package contract

import (
	"context"
	"time"

	"freight-broker-be/internal/entity"
)

type LedgerRepository interface {
	HasProcessed(ctx context.Context, chargeId string, status entity.ChargeStatus) (bool, error)
	// MarkProcessed returns entity.ErrConflict when the key already exists.
	MarkProcessed(ctx context.Context, entry *entity.ProcessedCharge) error
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
	Count(ctx context.Context) (int64, error)
}
