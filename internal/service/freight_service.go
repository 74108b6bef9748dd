package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"freight-broker-be/internal/dto"
	"freight-broker-be/internal/entity"
	"freight-broker-be/internal/pkg/logger"
	"freight-broker-be/internal/repository/specification"
	"freight-broker-be/internal/repository/unitofwork"
	"freight-broker-be/pkg/authz"
	"freight-broker-be/pkg/clock"
	"freight-broker-be/pkg/events"
	"freight-broker-be/pkg/lifecycle"
	"freight-broker-be/pkg/metrics"
)

// maxCASAttempts bounds reload-and-reapply after a version miss.
const maxCASAttempts = 3

const defaultListLimit = 50

type IFreightService interface {
	Create(ctx context.Context, actor entity.Actor, req *dto.CreateFreightRequest) (*dto.FreightResponse, error)
	Get(ctx context.Context, id int64) (*dto.FreightResponse, error)
	ListByOwner(ctx context.Context, actor entity.Actor, query dto.ListFreightsQuery) (*dto.FreightListResponse, error)
	Reactivate(ctx context.Context, id int64, actor entity.Actor) (*dto.FreightResponse, error)
	Complete(ctx context.Context, id int64, actor entity.Actor) (*dto.FreightResponse, error)
	Cancel(ctx context.Context, id int64, actor entity.Actor) (*dto.FreightResponse, error)
}

type freightService struct {
	uowFactory unitofwork.RepositoryFactory
	clock      clock.Clock
	publisher  events.Publisher
	metrics    *metrics.Collector
	logger     logger.ILogger
}

func NewFreightService(
	uowFactory unitofwork.RepositoryFactory,
	clk clock.Clock,
	publisher events.Publisher,
	collector *metrics.Collector,
	log logger.ILogger,
) IFreightService {
	return &freightService{
		uowFactory: uowFactory,
		clock:      clk,
		publisher:  publisher,
		metrics:    collector,
		logger:     log,
	}
}

func (s *freightService) Create(ctx context.Context, actor entity.Actor, req *dto.CreateFreightRequest) (*dto.FreightResponse, error) {
	if !authz.CanCreateFreight(actor) {
		s.metrics.RecordTransition("freight", "create", entity.ErrForbidden)
		return nil, entity.ErrForbidden
	}

	now := s.clock.Now()
	freight := lifecycle.NewFreight(entity.FreightDraft{
		Origin:      req.Origin,
		Destination: req.Destination,
		NoExpiry:    req.NoExpiry,
	}, actor, now)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.FreightRepository().Create(ctx, freight); err != nil {
		return nil, fmt.Errorf("create freight: %w", err)
	}

	s.metrics.RecordTransition("freight", "create", nil)
	s.logger.Info(logger.ModuleFreight, "Freight created", map[string]interface{}{
		"freight_id": freight.Id,
		"actor_id":   actor.Id,
		"status":     freight.Status,
	})
	s.publish(ctx, events.FreightCreated, freight, actor)

	return toFreightResponse(freight, now), nil
}

func (s *freightService) Get(ctx context.Context, id int64) (*dto.FreightResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	freight, err := uow.FreightRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, fmt.Errorf("load freight %d: %w", id, err)
	}
	if freight == nil {
		return nil, entity.ErrNotFound
	}
	return toFreightResponse(freight, s.clock.Now()), nil
}

func (s *freightService) ListByOwner(ctx context.Context, actor entity.Actor, query dto.ListFreightsQuery) (*dto.FreightListResponse, error) {
	if query.Limit <= 0 {
		query.Limit = defaultListLimit
	}
	now := s.clock.Now()

	filters := []specification.Specification{
		specification.OwnedBy{AccountID: actor.Id, ClientID: actor.ClientId},
	}
	if query.Status != "" {
		filters = append(filters, specification.ByDerivedStatus{Status: query.Status, Now: now})
	}

	repo := s.uowFactory.NewUnitOfWork(ctx).FreightRepository()
	total, err := repo.Count(ctx, filters...)
	if err != nil {
		return nil, fmt.Errorf("count freights: %w", err)
	}
	freights, err := repo.FindAll(ctx, append(filters,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: query.Limit, Offset: query.Offset},
	)...)
	if err != nil {
		return nil, fmt.Errorf("list freights: %w", err)
	}

	items := make([]*dto.FreightResponse, 0, len(freights))
	for _, f := range freights {
		items = append(items, toFreightResponse(f, now))
	}
	return &dto.FreightListResponse{
		Items:  items,
		Total:  total,
		Limit:  query.Limit,
		Offset: query.Offset,
	}, nil
}

func (s *freightService) Reactivate(ctx context.Context, id int64, actor entity.Actor) (*dto.FreightResponse, error) {
	return s.mutate(ctx, id, actor, "reactivate", events.FreightReactivated, lifecycle.Reactivate)
}

func (s *freightService) Complete(ctx context.Context, id int64, actor entity.Actor) (*dto.FreightResponse, error) {
	return s.mutate(ctx, id, actor, "complete", events.FreightCompleted, closeAs(entity.FreightStatusCompleted))
}

func (s *freightService) Cancel(ctx context.Context, id int64, actor entity.Actor) (*dto.FreightResponse, error) {
	return s.mutate(ctx, id, actor, "cancel", events.FreightCancelled, closeAs(entity.FreightStatusCancelled))
}

func closeAs(status entity.FreightStatus) func(*entity.Freight, time.Time) error {
	return func(f *entity.Freight, now time.Time) error {
		return lifecycle.Close(f, status, now)
	}
}

// mutate loads, authorizes, applies and writes with compare-and-set. A
// version miss reloads and re-applies so the last writer wins.
func (s *freightService) mutate(
	ctx context.Context,
	id int64,
	actor entity.Actor,
	transition string,
	eventType string,
	apply func(*entity.Freight, time.Time) error,
) (*dto.FreightResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.FreightRepository()

	for attempt := 1; attempt <= maxCASAttempts; attempt++ {
		freight, err := repo.FindOne(ctx, specification.ByID{ID: id})
		if err != nil {
			return nil, fmt.Errorf("load freight %d: %w", id, err)
		}
		if freight == nil {
			return nil, entity.ErrNotFound
		}
		if !authz.CanMutateFreight(actor, freight) {
			s.reject(transition, id, actor, entity.ErrForbidden)
			return nil, entity.ErrForbidden
		}

		now := s.clock.Now()
		if err := apply(freight, now); err != nil {
			s.reject(transition, id, actor, err)
			return nil, err
		}

		err = repo.UpdateVersioned(ctx, freight)
		if errors.Is(err, entity.ErrStaleWrite) {
			s.logger.Debug(logger.ModuleFreight, "Version miss, reloading", map[string]interface{}{
				"freight_id": id,
				"attempt":    attempt,
			})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s freight %d: %w", transition, id, err)
		}

		s.metrics.RecordTransition("freight", transition, nil)
		s.logger.Info(logger.ModuleFreight, "Freight transition applied", map[string]interface{}{
			"transition": transition,
			"freight_id": id,
			"actor_id":   actor.Id,
			"status":     freight.Status,
		})
		s.publish(ctx, eventType, freight, actor)
		return toFreightResponse(freight, now), nil
	}

	s.metrics.RecordTransition("freight", transition, entity.ErrStaleWrite)
	return nil, entity.ErrStaleWrite
}

func (s *freightService) reject(transition string, id int64, actor entity.Actor, err error) {
	s.metrics.RecordTransition("freight", transition, err)
	s.logger.Warn(logger.ModuleFreight, "Freight transition rejected", map[string]interface{}{
		"transition": transition,
		"freight_id": id,
		"actor_id":   actor.Id,
		"role":       actor.Role.String(),
		"reason":     err.Error(),
	})
}

func (s *freightService) publish(ctx context.Context, eventType string, f *entity.Freight, actor entity.Actor) {
	event := events.New(eventType, f.UpdatedAt, map[string]interface{}{
		"freightId":         f.Id,
		"status":            string(f.Status),
		"expirationInstant": f.ExpirationInstant,
		"actorId":           actor.Id,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn(logger.ModuleFreight, "Failed to publish event", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}

func toFreightResponse(f *entity.Freight, now time.Time) *dto.FreightResponse {
	return &dto.FreightResponse{
		Id:                f.Id,
		Origin:            f.Origin,
		Destination:       f.Destination,
		Status:            string(lifecycle.DeriveFreightStatus(f, now)),
		ExpirationInstant: f.ExpirationInstant,
		OwnerAccountId:    f.OwnerAccountId,
		OwnerClientId:     f.OwnerClientId,
		CreatedAt:         f.CreatedAt,
		UpdatedAt:         f.UpdatedAt,
	}
}
