package contract

import (
	"context"

	"freight-broker-be/internal/entity"
	"freight-broker-be/internal/repository/specification"
)

type FreightRepository interface {
	Create(ctx context.Context, freight *entity.Freight) error
	// UpdateVersioned writes freight only if the stored version still equals
	// freight.Version, then bumps the version. entity.ErrStaleWrite on a miss.
	UpdateVersioned(ctx context.Context, freight *entity.Freight) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Freight, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Freight, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
