package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"freight-broker-be/internal/dto"
	"freight-broker-be/internal/entity"
	"freight-broker-be/internal/pkg/logger"
	"freight-broker-be/internal/pkg/serverutils"
	"freight-broker-be/internal/repository/specification"
	"freight-broker-be/internal/repository/unitofwork"
	"freight-broker-be/pkg/clock"
	"freight-broker-be/pkg/dedup"
	"freight-broker-be/pkg/events"
	"freight-broker-be/pkg/lifecycle"
	"freight-broker-be/pkg/metrics"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

type AckOutcome string

const (
	AckApplied        AckOutcome = "applied"
	AckRecorded       AckOutcome = "recorded"
	AckDuplicate      AckOutcome = "duplicate"
	AckMalformed      AckOutcome = "malformed"
	AckUnknownAccount AckOutcome = "unknown_account"
)

// Ack tells the provider the delivery is settled. Every outcome is a success
// from the provider's point of view; only a returned error asks for a retry.
type Ack struct {
	Outcome   AckOutcome
	ChargeId  string
	AccountId int64
}

type IReconcilerService interface {
	HandleEvent(ctx context.Context, raw []byte) (*Ack, error)
}

type reconcilerService struct {
	uowFactory unitofwork.RepositoryFactory
	clock      clock.Clock
	cache      dedup.Cache
	alerts     message.Publisher
	alertTopic string
	publisher  events.Publisher
	metrics    *metrics.Collector
	logger     logger.ILogger
}

func NewReconcilerService(
	uowFactory unitofwork.RepositoryFactory,
	clk clock.Clock,
	cache dedup.Cache,
	alerts message.Publisher,
	alertTopic string,
	publisher events.Publisher,
	collector *metrics.Collector,
	log logger.ILogger,
) IReconcilerService {
	return &reconcilerService{
		uowFactory: uowFactory,
		clock:      clk,
		cache:      cache,
		alerts:     alerts,
		alertTopic: alertTopic,
		publisher:  publisher,
		metrics:    collector,
		logger:     log,
	}
}

func (s *reconcilerService) HandleEvent(ctx context.Context, raw []byte) (*Ack, error) {
	ctx, span := otel.Tracer("reconciler").Start(ctx, "HandleEvent")
	defer span.End()
	start := time.Now()

	event, err := ParsePaymentEvent(raw)
	if err != nil {
		s.logger.Warn(logger.ModuleReconciler, "Malformed payment event", map[string]interface{}{
			"error":   err.Error(),
			"payload": truncate(string(raw), 512),
		})
		s.raise(ctx, events.PaymentMalformed, map[string]interface{}{
			"error":   err.Error(),
			"payload": truncate(string(raw), 2048),
		})
		s.metrics.RecordWebhook(string(AckMalformed), "", time.Since(start))
		return &Ack{Outcome: AckMalformed}, nil
	}

	span.SetAttributes(
		attribute.String("charge.id", event.ChargeId),
		attribute.String("charge.status", string(event.ChargeStatus)),
	)

	ack, err := s.reconcile(ctx, event, raw)
	if err != nil {
		span.RecordError(err)
		s.logger.Error(logger.ModuleReconciler, "Payment event not settled, provider will retry", map[string]interface{}{
			"charge_id":     event.ChargeId,
			"charge_status": event.ChargeStatus,
			"error":         err.Error(),
		})
		return nil, err
	}

	span.SetAttributes(attribute.String("ack.outcome", string(ack.Outcome)))
	s.metrics.RecordWebhook(string(ack.Outcome), string(event.ChargeStatus), time.Since(start))
	return ack, nil
}

func (s *reconcilerService) reconcile(ctx context.Context, event *entity.PaymentEvent, raw []byte) (*Ack, error) {
	key := dedup.Key(event.ChargeId, string(event.ChargeStatus))

	hit, err := s.cache.Seen(ctx, key)
	if err != nil {
		s.logger.Warn(logger.ModuleLedger, "Lookaside cache unavailable, using ledger", map[string]interface{}{"error": err.Error()})
	} else if hit {
		s.logDuplicate(event, "cache")
		return &Ack{Outcome: AckDuplicate, ChargeId: event.ChargeId}, nil
	}

	correlation, err := s.uowFactory.NewUnitOfWork(ctx).AccountRepository().
		FindCorrelation(ctx, specification.ByCorrelationID{CorrelationID: event.CorrelationId})
	if err != nil {
		return nil, fmt.Errorf("resolve correlation %s: %w", event.CorrelationId, err)
	}
	if correlation == nil {
		return s.unknownAccount(ctx, event, "no charge registered for correlation id"), nil
	}

	plan := correlation.PlanType
	if event.PlanType != nil {
		plan = *event.PlanType
	}

	for attempt := 1; attempt <= maxCASAttempts; attempt++ {
		result, err := s.applyInTx(ctx, event, correlation.AccountId, plan, raw)
		if errors.Is(err, entity.ErrStaleWrite) {
			s.logger.Debug(logger.ModuleReconciler, "Account version miss, retrying", map[string]interface{}{
				"account_id": correlation.AccountId,
				"attempt":    attempt,
			})
			continue
		}
		if err != nil {
			return nil, err
		}

		switch result.outcome {
		case AckUnknownAccount:
			return s.unknownAccount(ctx, event, "correlated account does not exist"), nil
		case AckDuplicate:
			s.markCache(ctx, key)
			s.logDuplicate(event, "ledger")
			return &Ack{Outcome: AckDuplicate, ChargeId: event.ChargeId, AccountId: correlation.AccountId}, nil
		}

		s.markCache(ctx, key)
		s.afterCommit(ctx, event, result)
		return &Ack{Outcome: result.outcome, ChargeId: event.ChargeId, AccountId: correlation.AccountId}, nil
	}

	// The ledger row was rolled back with the last attempt, so a redelivery
	// can still apply the charge.
	return nil, fmt.Errorf("apply charge %s to account %d after %d version misses: %w",
		event.ChargeId, correlation.AccountId, maxCASAttempts, entity.ErrStoreBusy)
}

type txResult struct {
	outcome     AckOutcome
	account     *entity.Account
	staleRefund bool
	// refundedBefore is a completed arriving after the refund of the same charge.
	refundedBefore bool
	previousPaid   *string
}

// applyInTx couples the ledger entry, the account write and the audit record
// in one transaction so a crash can never mark a charge processed without
// its effect, nor apply it twice.
func (s *reconcilerService) applyInTx(ctx context.Context, event *entity.PaymentEvent, accountId int64, plan entity.PlanType, raw []byte) (*txResult, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer uow.Rollback()

	ledger := uow.LedgerRepository()
	processed, err := ledger.HasProcessed(ctx, event.ChargeId, event.ChargeStatus)
	if err != nil {
		return nil, fmt.Errorf("ledger lookup: %w", err)
	}
	if processed {
		return &txResult{outcome: AckDuplicate}, nil
	}

	now := s.clock.Now()
	err = ledger.MarkProcessed(ctx, &entity.ProcessedCharge{
		ChargeId:     event.ChargeId,
		ChargeStatus: event.ChargeStatus,
		OccurredAt:   event.OccurredAt,
		ProcessedAt:  now,
	})
	if errors.Is(err, entity.ErrConflict) {
		return &txResult{outcome: AckDuplicate}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger insert: %w", err)
	}

	accounts := uow.AccountRepository()
	account, err := accounts.FindOne(ctx, specification.ByID{ID: accountId})
	if err != nil {
		return nil, fmt.Errorf("load account %d: %w", accountId, err)
	}
	if account == nil {
		return &txResult{outcome: AckUnknownAccount}, nil
	}

	result := &txResult{
		outcome:      AckRecorded,
		account:      account,
		staleRefund:  lifecycle.IsRefundOfStaleCharge(account, event.ChargeId, event.ChargeStatus),
		previousPaid: account.BasisChargeId,
	}
	if event.ChargeStatus == entity.ChargeStatusCompleted {
		result.refundedBefore, err = ledger.HasProcessed(ctx, event.ChargeId, entity.ChargeStatusRefunded)
		if err != nil {
			return nil, fmt.Errorf("ledger lookup: %w", err)
		}
	}

	if lifecycle.ApplyPayment(account, event.ChargeId, event.ChargeStatus, plan, now) {
		eventId := event.ProviderEventId
		if eventId == "" {
			eventId = dedup.Key(event.ChargeId, string(event.ChargeStatus))
		}
		account.LastAppliedEventId = &eventId
		if err := accounts.UpdateVersioned(ctx, account); err != nil {
			return nil, err
		}
		result.outcome = AckApplied
	}

	auditOutcome := entity.PaymentOutcomeAuditOnly
	if result.outcome == AckApplied {
		auditOutcome = entity.PaymentOutcomeApplied
	}
	err = uow.PaymentAuditRepository().Create(ctx, &entity.PaymentAuditRecord{
		AccountId:       accountId,
		ProviderEventId: event.ProviderEventId,
		ChargeId:        event.ChargeId,
		ChargeStatus:    event.ChargeStatus,
		Outcome:         auditOutcome,
		RawPayload:      raw,
		OccurredAt:      event.OccurredAt,
		CreatedAt:       now,
	})
	if err != nil {
		return nil, fmt.Errorf("audit record: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return result, nil
}

func (s *reconcilerService) afterCommit(ctx context.Context, event *entity.PaymentEvent, result *txResult) {
	account := result.account

	s.logger.Info(logger.ModuleReconciler, "Payment event settled", map[string]interface{}{
		"outcome":       result.outcome,
		"account_id":    account.Id,
		"charge_id":     event.ChargeId,
		"charge_status": event.ChargeStatus,
		"state":         account.SubscriptionState,
		"expires_at":    account.ExpiresAt,
	})

	if result.staleRefund {
		basis := ""
		if result.previousPaid != nil {
			basis = *result.previousPaid
		}
		s.metrics.RecordStaleRefund()
		s.logger.Warn(logger.ModuleReconciler, "Refund applied for a charge other than the current paid period", map[string]interface{}{
			"account_id":      account.Id,
			"refunded_charge": event.ChargeId,
			"basis_charge":    basis,
		})
		s.raise(ctx, events.PaymentStaleRefund, map[string]interface{}{
			"accountId":      account.Id,
			"refundedCharge": event.ChargeId,
			"basisCharge":    basis,
		})
	}

	if result.refundedBefore {
		s.logger.Warn(logger.ModuleReconciler, "Completed charge arrived after its refund", map[string]interface{}{
			"account_id": account.Id,
			"charge_id":  event.ChargeId,
			"expires_at": account.ExpiresAt,
		})
		s.raise(ctx, events.PaymentRefundedCharge, map[string]interface{}{
			"accountId": account.Id,
			"chargeId":  event.ChargeId,
			"expiresAt": account.ExpiresAt,
		})
	}

	if result.outcome != AckApplied {
		return
	}
	err := s.publisher.Publish(ctx, events.New(events.PaymentApplied, s.clock.Now(), map[string]interface{}{
		"accountId":    account.Id,
		"chargeId":     event.ChargeId,
		"chargeStatus": string(event.ChargeStatus),
		"state":        string(account.SubscriptionState),
		"expiresAt":    account.ExpiresAt,
	}))
	if err != nil {
		s.logger.Warn(logger.ModuleReconciler, "Failed to publish event", map[string]interface{}{
			"event": events.PaymentApplied,
			"error": err.Error(),
		})
	}
}

func (s *reconcilerService) unknownAccount(ctx context.Context, event *entity.PaymentEvent, reason string) *Ack {
	s.logger.Warn(logger.ModuleReconciler, "Payment event for unknown account", map[string]interface{}{
		"charge_id":      event.ChargeId,
		"correlation_id": event.CorrelationId,
		"reason":         reason,
	})
	s.raise(ctx, events.PaymentUnknownAccount, map[string]interface{}{
		"chargeId":      event.ChargeId,
		"correlationId": event.CorrelationId,
		"chargeStatus":  string(event.ChargeStatus),
		"reason":        reason,
	})
	return &Ack{Outcome: AckUnknownAccount, ChargeId: event.ChargeId}
}

func (s *reconcilerService) logDuplicate(event *entity.PaymentEvent, source string) {
	s.logger.Info(logger.ModuleLedger, "Duplicate payment event acknowledged", map[string]interface{}{
		"charge_id":     event.ChargeId,
		"charge_status": event.ChargeStatus,
		"source":        source,
	})
}

func (s *reconcilerService) markCache(ctx context.Context, key string) {
	if err := s.cache.Mark(ctx, key); err != nil {
		s.logger.Warn(logger.ModuleLedger, "Failed to populate lookaside cache", map[string]interface{}{"error": err.Error()})
	}
}

// raise hands an operator alert to the in-process alert consumer.
func (s *reconcilerService) raise(ctx context.Context, eventType string, data map[string]interface{}) {
	payload, err := json.Marshal(events.ToEnvelope(events.New(eventType, s.clock.Now(), data)))
	if err == nil {
		msg := message.NewMessage(watermill.NewUUID(), payload)
		msg.SetContext(ctx)
		err = s.alerts.Publish(s.alertTopic, msg)
	}
	if err != nil {
		s.logger.Error(logger.ModuleAlert, "Failed to raise operator alert", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}

// ParsePaymentEvent validates a provider notification body.
func ParsePaymentEvent(raw []byte) (*entity.PaymentEvent, error) {
	var req dto.PixWebhookRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrMalformedEvent, err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrMalformedEvent, err)
	}

	occurredAt, err := time.Parse(time.RFC3339, req.OccurredAt)
	if err != nil {
		return nil, fmt.Errorf("%w: occurredAt: %v", entity.ErrMalformedEvent, err)
	}

	event := &entity.PaymentEvent{
		ProviderEventId: req.EventId,
		ChargeId:        strings.TrimSpace(req.ChargeId),
		CorrelationId:   strings.TrimSpace(req.CorrelationId),
		ChargeStatus:    entity.ChargeStatus(req.Status),
		OccurredAt:      occurredAt.UTC(),
	}
	if event.ChargeId == "" || event.CorrelationId == "" {
		return nil, fmt.Errorf("%w: blank identifiers", entity.ErrMalformedEvent)
	}
	if req.PlanType != nil {
		plan := entity.PlanType(*req.PlanType)
		event.PlanType = &plan
	}
	return event, nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
