package implementation

import (
	"context"

	"freight-broker-be/internal/entity"
	"freight-broker-be/internal/mapper"
	"freight-broker-be/internal/model"
	"freight-broker-be/internal/repository/contract"
	"freight-broker-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentAuditRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PaymentMapper
}

func NewPaymentAuditRepository(db *gorm.DB) contract.PaymentAuditRepository {
	return &PaymentAuditRepositoryImpl{
		db:     db,
		mapper: mapper.NewPaymentMapper(),
	}
}

func (r *PaymentAuditRepositoryImpl) Create(ctx context.Context, record *entity.PaymentAuditRecord) error {
	if record.Id == "" {
		record.Id = uuid.NewString()
	}
	m := r.mapper.AuditToModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	record.CreatedAt = m.CreatedAt
	return nil
}

func (r *PaymentAuditRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PaymentAuditRecord, error) {
	var models []*model.PaymentAuditRecord
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	records := make([]*entity.PaymentAuditRecord, 0, len(models))
	for _, m := range models {
		records = append(records, r.mapper.AuditToEntity(m))
	}
	return records, nil
}
