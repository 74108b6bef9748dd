package implementation

import (
	"context"
	"errors"

	"freight-broker-be/internal/entity"
	"freight-broker-be/internal/mapper"
	"freight-broker-be/internal/model"
	"freight-broker-be/internal/repository/contract"
	"freight-broker-be/internal/repository/specification"

	"gorm.io/gorm"
)

type AccountRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AccountMapper
}

func NewAccountRepository(db *gorm.DB) contract.AccountRepository {
	return &AccountRepositoryImpl{
		db:     db,
		mapper: mapper.NewAccountMapper(),
	}
}

func (r *AccountRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AccountRepositoryImpl) Create(ctx context.Context, account *entity.Account) error {
	if account.Version == 0 {
		account.Version = 1
	}
	m := r.mapper.ToModel(account)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*account = *r.mapper.ToEntity(m)
	return nil
}

func (r *AccountRepositoryImpl) columns(m *model.Account) map[string]interface{} {
	return map[string]interface{}{
		"client_id":             m.ClientId,
		"subscription_state":    m.SubscriptionState,
		"trial_used":            m.TrialUsed,
		"expires_at":            m.ExpiresAt,
		"plan_type":             m.PlanType,
		"cancel_pending":        m.CancelPending,
		"last_applied_event_id": m.LastAppliedEventId,
		"basis_charge_id":       m.BasisChargeId,
		"version":               m.Version + 1,
		"updated_at":            m.UpdatedAt,
	}
}

func (r *AccountRepositoryImpl) UpdateVersioned(ctx context.Context, account *entity.Account) error {
	m := r.mapper.ToModel(account)
	result := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("id = ? AND version = ?", m.Id, m.Version).
		Updates(r.columns(m))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entity.ErrStaleWrite
	}
	account.Version++
	return nil
}

func (r *AccountRepositoryImpl) ActivateTrialVersioned(ctx context.Context, account *entity.Account) error {
	m := r.mapper.ToModel(account)
	result := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("id = ? AND version = ? AND trial_used = ?", m.Id, m.Version, false).
		Updates(r.columns(m))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entity.ErrStaleWrite
	}
	account.Version++
	return nil
}

func (r *AccountRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Account, error) {
	var m model.Account
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.mapper.ToEntity(&m), nil
}

func (r *AccountRepositoryImpl) CreateCorrelation(ctx context.Context, correlation *entity.ChargeCorrelation) error {
	m := r.mapper.CorrelationToModel(correlation)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*correlation = *r.mapper.CorrelationToEntity(m)
	return nil
}

func (r *AccountRepositoryImpl) FindCorrelation(ctx context.Context, specs ...specification.Specification) (*entity.ChargeCorrelation, error) {
	var m model.ChargeCorrelation
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.mapper.CorrelationToEntity(&m), nil
}
