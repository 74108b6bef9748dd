package contract

import (
	"context"

	"freight-broker-be/internal/entity"
	"freight-broker-be/internal/repository/specification"
)

type PaymentAuditRepository interface {
	Create(ctx context.Context, record *entity.PaymentAuditRecord) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PaymentAuditRecord, error)
}
