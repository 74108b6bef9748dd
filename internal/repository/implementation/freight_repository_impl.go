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

type FreightRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FreightMapper
}

func NewFreightRepository(db *gorm.DB) contract.FreightRepository {
	return &FreightRepositoryImpl{
		db:     db,
		mapper: mapper.NewFreightMapper(),
	}
}

func (r *FreightRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *FreightRepositoryImpl) Create(ctx context.Context, freight *entity.Freight) error {
	if freight.Version == 0 {
		freight.Version = 1
	}
	m := r.mapper.ToModel(freight)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*freight = *r.mapper.ToEntity(m)
	return nil
}

func (r *FreightRepositoryImpl) UpdateVersioned(ctx context.Context, freight *entity.Freight) error {
	m := r.mapper.ToModel(freight)
	result := r.db.WithContext(ctx).Model(&model.Freight{}).
		Where("id = ? AND version = ?", m.Id, m.Version).
		Updates(map[string]interface{}{
			"origin":             m.Origin,
			"destination":        m.Destination,
			"status":             m.Status,
			"expiration_instant": m.ExpirationInstant,
			"owner_account_id":   m.OwnerAccountId,
			"owner_client_id":    m.OwnerClientId,
			"version":            m.Version + 1,
			"updated_at":         m.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entity.ErrStaleWrite
	}
	freight.Version++
	return nil
}

func (r *FreightRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Freight, error) {
	var m model.Freight
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.mapper.ToEntity(&m), nil
}

func (r *FreightRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Freight, error) {
	var models []*model.Freight
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	return r.mapper.ToEntities(models), nil
}

func (r *FreightRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Freight{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
