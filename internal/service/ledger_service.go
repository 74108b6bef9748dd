package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"freight-broker-be/internal/dto"
	"freight-broker-be/internal/pkg/logger"
	"freight-broker-be/internal/repository/specification"
	"freight-broker-be/internal/repository/unitofwork"
	"freight-broker-be/pkg/clock"
	"freight-broker-be/pkg/metrics"
)

type LedgerStats struct {
	Entries   int64
	Retention time.Duration
}

type ILedgerService interface {
	// Prune drops ledger entries processed before now minus the retention
	// window and returns how many were removed.
	Prune(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (*LedgerStats, error)
	// AuditTrail lists the payment audit records of an account or a charge.
	AuditTrail(ctx context.Context, query dto.AuditQuery) ([]*dto.PaymentAuditResponse, error)
}

type ledgerService struct {
	uowFactory unitofwork.RepositoryFactory
	clock      clock.Clock
	retention  time.Duration
	metrics    *metrics.Collector
	logger     logger.ILogger
}

func NewLedgerService(
	uowFactory unitofwork.RepositoryFactory,
	clk clock.Clock,
	retention time.Duration,
	collector *metrics.Collector,
	log logger.ILogger,
) ILedgerService {
	if retention <= 0 {
		retention = clock.LedgerRetention
	}
	return &ledgerService{
		uowFactory: uowFactory,
		clock:      clk,
		retention:  retention,
		metrics:    collector,
		logger:     log,
	}
}

func (s *ledgerService) Prune(ctx context.Context) (int64, error) {
	cutoff := s.clock.Now().Add(-s.retention)

	removed, err := s.uowFactory.NewUnitOfWork(ctx).LedgerRepository().PruneBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune ledger: %w", err)
	}

	s.metrics.RecordLedgerPruned(removed)
	s.logger.Info(logger.ModuleLedger, "Ledger pruned", map[string]interface{}{
		"cutoff":  cutoff,
		"removed": removed,
	})
	return removed, nil
}

func (s *ledgerService) Stats(ctx context.Context) (*LedgerStats, error) {
	n, err := s.uowFactory.NewUnitOfWork(ctx).LedgerRepository().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count ledger: %w", err)
	}
	return &LedgerStats{Entries: n, Retention: s.retention}, nil
}

const defaultAuditLimit = 20

func (s *ledgerService) AuditTrail(ctx context.Context, query dto.AuditQuery) ([]*dto.PaymentAuditResponse, error) {
	var filters []specification.Specification
	if query.AccountId != nil {
		filters = append(filters, specification.ByAccountID{AccountID: *query.AccountId})
	}
	if query.ChargeId != "" {
		filters = append(filters, specification.ByChargeID{ChargeID: query.ChargeId})
	}
	if len(filters) == 0 {
		return nil, errors.New("audit query needs an account or a charge")
	}
	if query.Limit <= 0 {
		query.Limit = defaultAuditLimit
	}
	filters = append(filters,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: query.Limit},
	)

	records, err := s.uowFactory.NewUnitOfWork(ctx).PaymentAuditRepository().FindAll(ctx, filters...)
	if err != nil {
		return nil, fmt.Errorf("list payment audit: %w", err)
	}

	res := make([]*dto.PaymentAuditResponse, 0, len(records))
	for _, r := range records {
		res = append(res, &dto.PaymentAuditResponse{
			ChargeId:        r.ChargeId,
			ChargeStatus:    string(r.ChargeStatus),
			Outcome:         string(r.Outcome),
			AccountId:       r.AccountId,
			ProviderEventId: r.ProviderEventId,
			OccurredAt:      r.OccurredAt,
			CreatedAt:       r.CreatedAt,
		})
	}
	return res, nil
}
