package contract

import (
	"context"

	"freight-broker-be/internal/entity"
	"freight-broker-be/internal/repository/specification"
)

type AccountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	UpdateVersioned(ctx context.Context, account *entity.Account) error
	// ActivateTrialVersioned is UpdateVersioned with the extra guard that the
	// stored trial_used is still false.
	ActivateTrialVersioned(ctx context.Context, account *entity.Account) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Account, error)

	CreateCorrelation(ctx context.Context, correlation *entity.ChargeCorrelation) error
	FindCorrelation(ctx context.Context, specs ...specification.Specification) (*entity.ChargeCorrelation, error)
}
