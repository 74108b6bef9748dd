package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"freight-broker-be/internal/dto"
	"freight-broker-be/internal/entity"
	"freight-broker-be/internal/pkg/logger"
	"freight-broker-be/internal/repository/contract"
	"freight-broker-be/internal/repository/specification"
	"freight-broker-be/internal/repository/unitofwork"
	"freight-broker-be/pkg/authz"
	"freight-broker-be/pkg/clock"
	"freight-broker-be/pkg/database"
	"freight-broker-be/pkg/events"
	"freight-broker-be/pkg/lifecycle"
	"freight-broker-be/pkg/metrics"

	"github.com/google/uuid"
)

type ISubscriptionService interface {
	GetStatus(ctx context.Context, accountId int64, actor entity.Actor) (*dto.SubscriptionStatusResponse, error)
	ActivateTrial(ctx context.Context, accountId int64, actor entity.Actor) (*dto.SubscriptionStatusResponse, error)
	CancelSubscription(ctx context.Context, accountId int64, actor entity.Actor) (*dto.SubscriptionStatusResponse, error)
	RegisterCharge(ctx context.Context, accountId int64, actor entity.Actor, planType entity.PlanType) (*dto.RegisterChargeResponse, error)
}

type subscriptionService struct {
	uowFactory unitofwork.RepositoryFactory
	clock      clock.Clock
	publisher  events.Publisher
	metrics    *metrics.Collector
	logger     logger.ILogger
}

func NewSubscriptionService(
	uowFactory unitofwork.RepositoryFactory,
	clk clock.Clock,
	publisher events.Publisher,
	collector *metrics.Collector,
	log logger.ILogger,
) ISubscriptionService {
	return &subscriptionService{
		uowFactory: uowFactory,
		clock:      clk,
		publisher:  publisher,
		metrics:    collector,
		logger:     log,
	}
}

// loadAccount returns the account if actor may act on it. An actor's own
// account is provisioned on first use in state none.
func (s *subscriptionService) loadAccount(ctx context.Context, repo contract.AccountRepository, accountId int64, actor entity.Actor) (*entity.Account, error) {
	account, err := repo.FindOne(ctx, specification.ByID{ID: accountId})
	if err != nil {
		return nil, fmt.Errorf("load account %d: %w", accountId, err)
	}

	if account == nil {
		if actor.Id != accountId {
			if actor.IsAdmin() {
				return nil, entity.ErrNotFound
			}
			return nil, entity.ErrForbidden
		}
		now := s.clock.Now()
		account = &entity.Account{
			Id:                accountId,
			ClientId:          actor.ClientId,
			SubscriptionState: entity.SubscriptionStateNone,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := repo.Create(ctx, account); err != nil {
			if !database.IsUniqueViolation(err) {
				return nil, fmt.Errorf("provision account %d: %w", accountId, err)
			}
			// provisioned concurrently
			account, err = repo.FindOne(ctx, specification.ByID{ID: accountId})
			if err != nil {
				return nil, fmt.Errorf("reload account %d: %w", accountId, err)
			}
			if account == nil {
				return nil, entity.ErrNotFound
			}
		}
	}

	if !authz.CanMutateAccount(actor, account) {
		return nil, entity.ErrForbidden
	}
	return account, nil
}

func (s *subscriptionService) GetStatus(ctx context.Context, accountId int64, actor entity.Actor) (*dto.SubscriptionStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	account, err := s.loadAccount(ctx, uow.AccountRepository(), accountId, actor)
	if err != nil {
		return nil, err
	}
	return toStatusResponse(account, s.clock.Now()), nil
}

func (s *subscriptionService) ActivateTrial(ctx context.Context, accountId int64, actor entity.Actor) (*dto.SubscriptionStatusResponse, error) {
	return s.mutate(ctx, accountId, actor, "activate_trial", events.TrialActivated,
		lifecycle.ActivateTrial,
		func(repo contract.AccountRepository, a *entity.Account) error {
			return repo.ActivateTrialVersioned(ctx, a)
		},
	)
}

func (s *subscriptionService) CancelSubscription(ctx context.Context, accountId int64, actor entity.Actor) (*dto.SubscriptionStatusResponse, error) {
	return s.mutate(ctx, accountId, actor, "cancel", events.SubscriptionCancelled,
		lifecycle.CancelSubscription,
		func(repo contract.AccountRepository, a *entity.Account) error {
			return repo.UpdateVersioned(ctx, a)
		},
	)
}

func (s *subscriptionService) mutate(
	ctx context.Context,
	accountId int64,
	actor entity.Actor,
	transition string,
	eventType string,
	apply func(*entity.Account, time.Time) error,
	write func(contract.AccountRepository, *entity.Account) error,
) (*dto.SubscriptionStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.AccountRepository()

	for attempt := 1; attempt <= maxCASAttempts; attempt++ {
		account, err := s.loadAccount(ctx, repo, accountId, actor)
		if err != nil {
			s.reject(transition, accountId, actor, err)
			return nil, err
		}

		now := s.clock.Now()
		if err := apply(account, now); err != nil {
			s.reject(transition, accountId, actor, err)
			return nil, err
		}

		err = write(repo, account)
		if errors.Is(err, entity.ErrStaleWrite) {
			s.logger.Debug(logger.ModuleSubscription, "Version miss, reloading", map[string]interface{}{
				"account_id": accountId,
				"attempt":    attempt,
			})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s account %d: %w", transition, accountId, err)
		}

		s.metrics.RecordTransition("subscription", transition, nil)
		s.logger.Info(logger.ModuleSubscription, "Subscription transition applied", map[string]interface{}{
			"transition": transition,
			"account_id": accountId,
			"actor_id":   actor.Id,
			"expires_at": account.ExpiresAt,
		})
		s.publish(ctx, events.New(eventType, now, map[string]interface{}{
			"accountId": accountId,
			"state":     string(account.SubscriptionState),
			"expiresAt": account.ExpiresAt,
		}))
		return toStatusResponse(account, now), nil
	}

	s.metrics.RecordTransition("subscription", transition, entity.ErrStaleWrite)
	return nil, entity.ErrStaleWrite
}

func (s *subscriptionService) RegisterCharge(ctx context.Context, accountId int64, actor entity.Actor, planType entity.PlanType) (*dto.RegisterChargeResponse, error) {
	if !planType.Valid() {
		return nil, fmt.Errorf("plan type %q: %w", planType, entity.ErrInvalidTransition)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.AccountRepository()
	if _, err := s.loadAccount(ctx, repo, accountId, actor); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	correlation := &entity.ChargeCorrelation{
		CorrelationId: uuid.NewString(),
		AccountId:     accountId,
		PlanType:      planType,
		CreatedAt:     now,
	}
	if err := repo.CreateCorrelation(ctx, correlation); err != nil {
		return nil, fmt.Errorf("register charge for account %d: %w", accountId, err)
	}

	s.logger.Info(logger.ModuleSubscription, "Charge registered", map[string]interface{}{
		"account_id":     accountId,
		"correlation_id": correlation.CorrelationId,
		"plan_type":      string(planType),
	})
	s.publish(ctx, events.New(events.ChargeRegistered, now, map[string]interface{}{
		"accountId":     accountId,
		"correlationId": correlation.CorrelationId,
		"planType":      string(planType),
	}))

	return &dto.RegisterChargeResponse{
		CorrelationId: correlation.CorrelationId,
		AccountId:     accountId,
		PlanType:      string(planType),
	}, nil
}

func (s *subscriptionService) reject(transition string, accountId int64, actor entity.Actor, err error) {
	s.metrics.RecordTransition("subscription", transition, err)
	s.logger.Warn(logger.ModuleSubscription, "Subscription transition rejected", map[string]interface{}{
		"transition": transition,
		"account_id": accountId,
		"actor_id":   actor.Id,
		"reason":     err.Error(),
	})
}

func (s *subscriptionService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn(logger.ModuleSubscription, "Failed to publish event", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}

func toStatusResponse(a *entity.Account, now time.Time) *dto.SubscriptionStatusResponse {
	state := lifecycle.DeriveSubscriptionState(a, now)

	var plan *string
	if a.PlanType != nil {
		p := string(*a.PlanType)
		plan = &p
	}

	days := 0
	if a.ExpiresAt != nil && (state == entity.SubscriptionStatePaid || state == entity.SubscriptionStateTrialActive) {
		days = int(math.Ceil(a.ExpiresAt.Sub(now).Hours() / 24))
	}

	return &dto.SubscriptionStatusResponse{
		AccountId:     a.Id,
		State:         string(state),
		ExpiresAt:     a.ExpiresAt,
		PlanType:      plan,
		CancelPending: a.CancelPending,
		TrialUsed:     a.TrialUsed,
		DaysRemaining: days,
	}
}
