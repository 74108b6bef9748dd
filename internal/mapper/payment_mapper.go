package mapper

import (
	"freight-broker-be/internal/entity"
	"freight-broker-be/internal/model"

	"gorm.io/datatypes"
)

type PaymentMapper struct{}

func NewPaymentMapper() *PaymentMapper {
	return &PaymentMapper{}
}

func (m *PaymentMapper) ProcessedChargeToModel(p *entity.ProcessedCharge) *model.ProcessedCharge {
	return &model.ProcessedCharge{
		ChargeId:     p.ChargeId,
		ChargeStatus: string(p.ChargeStatus),
		OccurredAt:   p.OccurredAt,
		ProcessedAt:  p.ProcessedAt,
	}
}

func (m *PaymentMapper) ProcessedChargeToEntity(p *model.ProcessedCharge) *entity.ProcessedCharge {
	if p == nil {
		return nil
	}
	return &entity.ProcessedCharge{
		ChargeId:     p.ChargeId,
		ChargeStatus: entity.ChargeStatus(p.ChargeStatus),
		OccurredAt:   p.OccurredAt,
		ProcessedAt:  p.ProcessedAt,
	}
}

func (m *PaymentMapper) AuditToModel(r *entity.PaymentAuditRecord) *model.PaymentAuditRecord {
	return &model.PaymentAuditRecord{
		Id:              r.Id,
		AccountId:       r.AccountId,
		ProviderEventId: r.ProviderEventId,
		ChargeId:        r.ChargeId,
		ChargeStatus:    string(r.ChargeStatus),
		Outcome:         string(r.Outcome),
		RawPayload:      datatypes.JSON(r.RawPayload),
		OccurredAt:      r.OccurredAt,
		CreatedAt:       r.CreatedAt,
	}
}

func (m *PaymentMapper) AuditToEntity(r *model.PaymentAuditRecord) *entity.PaymentAuditRecord {
	if r == nil {
		return nil
	}
	return &entity.PaymentAuditRecord{
		Id:              r.Id,
		AccountId:       r.AccountId,
		ProviderEventId: r.ProviderEventId,
		ChargeId:        r.ChargeId,
		ChargeStatus:    entity.ChargeStatus(r.ChargeStatus),
		Outcome:         entity.PaymentOutcome(r.Outcome),
		RawPayload:      []byte(r.RawPayload),
		OccurredAt:      r.OccurredAt,
		CreatedAt:       r.CreatedAt,
	}
}
