package mapper

import (
	"freight-broker-be/internal/entity"
	"freight-broker-be/internal/model"
)

type AccountMapper struct{}

func NewAccountMapper() *AccountMapper {
	return &AccountMapper{}
}

func (m *AccountMapper) ToEntity(a *model.Account) *entity.Account {
	if a == nil {
		return nil
	}
	var plan *entity.PlanType
	if a.PlanType != nil {
		p := entity.PlanType(*a.PlanType)
		plan = &p
	}
	return &entity.Account{
		Id:                 a.Id,
		ClientId:           a.ClientId,
		SubscriptionState:  entity.SubscriptionState(a.SubscriptionState),
		TrialUsed:          a.TrialUsed,
		ExpiresAt:          a.ExpiresAt,
		PlanType:           plan,
		CancelPending:      a.CancelPending,
		LastAppliedEventId: a.LastAppliedEventId,
		BasisChargeId:      a.BasisChargeId,
		Version:            a.Version,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

func (m *AccountMapper) ToModel(a *entity.Account) *model.Account {
	if a == nil {
		return nil
	}
	var plan *string
	if a.PlanType != nil {
		p := string(*a.PlanType)
		plan = &p
	}
	state := a.SubscriptionState
	if state == "" {
		state = entity.SubscriptionStateNone
	}
	return &model.Account{
		Id:                 a.Id,
		ClientId:           a.ClientId,
		SubscriptionState:  string(state),
		TrialUsed:          a.TrialUsed,
		ExpiresAt:          a.ExpiresAt,
		PlanType:           plan,
		CancelPending:      a.CancelPending,
		LastAppliedEventId: a.LastAppliedEventId,
		BasisChargeId:      a.BasisChargeId,
		Version:            a.Version,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

func (m *AccountMapper) CorrelationToEntity(c *model.ChargeCorrelation) *entity.ChargeCorrelation {
	if c == nil {
		return nil
	}
	return &entity.ChargeCorrelation{
		CorrelationId: c.CorrelationId,
		AccountId:     c.AccountId,
		PlanType:      entity.PlanType(c.PlanType),
		CreatedAt:     c.CreatedAt,
	}
}

func (m *AccountMapper) CorrelationToModel(c *entity.ChargeCorrelation) *model.ChargeCorrelation {
	if c == nil {
		return nil
	}
	return &model.ChargeCorrelation{
		CorrelationId: c.CorrelationId,
		AccountId:     c.AccountId,
		PlanType:      string(c.PlanType),
		CreatedAt:     c.CreatedAt,
	}
}
