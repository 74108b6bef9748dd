package mapper

import (
	"freight-broker-be/internal/entity"
	"freight-broker-be/internal/model"
)

type FreightMapper struct{}

func NewFreightMapper() *FreightMapper {
	return &FreightMapper{}
}

func (m *FreightMapper) ToEntity(f *model.Freight) *entity.Freight {
	if f == nil {
		return nil
	}
	return &entity.Freight{
		Id:                f.Id,
		Origin:            f.Origin,
		Destination:       f.Destination,
		Status:            entity.FreightStatus(f.Status),
		ExpirationInstant: f.ExpirationInstant,
		OwnerAccountId:    f.OwnerAccountId,
		OwnerClientId:     f.OwnerClientId,
		Version:           f.Version,
		CreatedAt:         f.CreatedAt,
		UpdatedAt:         f.UpdatedAt,
	}
}

func (m *FreightMapper) ToModel(f *entity.Freight) *model.Freight {
	if f == nil {
		return nil
	}
	return &model.Freight{
		Id:                f.Id,
		Origin:            f.Origin,
		Destination:       f.Destination,
		Status:            string(f.Status),
		ExpirationInstant: f.ExpirationInstant,
		OwnerAccountId:    f.OwnerAccountId,
		OwnerClientId:     f.OwnerClientId,
		Version:           f.Version,
		CreatedAt:         f.CreatedAt,
		UpdatedAt:         f.UpdatedAt,
	}
}

func (m *FreightMapper) ToEntities(freights []*model.Freight) []*entity.Freight {
	entities := make([]*entity.Freight, 0, len(freights))
	for _, f := range freights {
		entities = append(entities, m.ToEntity(f))
	}
	return entities
}
