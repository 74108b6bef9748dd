package unitofwork

import (
	"context"

	"freight-broker-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	FreightRepository() contract.FreightRepository
	AccountRepository() contract.AccountRepository
	LedgerRepository() contract.LedgerRepository
	PaymentAuditRepository() contract.PaymentAuditRepository
}
