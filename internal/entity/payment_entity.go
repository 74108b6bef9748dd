package entity

import "time"

type ChargeStatus string

const (
	ChargeStatusCreated   ChargeStatus = "created"
	ChargeStatusActive    ChargeStatus = "active"
	ChargeStatusCompleted ChargeStatus = "completed"
	ChargeStatusExpired   ChargeStatus = "expired"
	ChargeStatusRefunded  ChargeStatus = "refunded"
)

// PaymentEvent is a parsed provider notification. Immutable once received.
type PaymentEvent struct {
	ProviderEventId string
	ChargeId        string
	CorrelationId   string
	ChargeStatus    ChargeStatus
	PlanType        *PlanType
	OccurredAt      time.Time
}

// ProcessedCharge is one Idempotency Ledger entry.
type ProcessedCharge struct {
	ChargeId     string
	ChargeStatus ChargeStatus
	OccurredAt   time.Time
	ProcessedAt  time.Time
}

type PaymentOutcome string

const (
	PaymentOutcomeApplied   PaymentOutcome = "applied"
	PaymentOutcomeAuditOnly PaymentOutcome = "audit_only"
)

// PaymentAuditRecord keeps the raw payload of every event that passed the ledger.
type PaymentAuditRecord struct {
	Id              string
	AccountId       int64
	ProviderEventId string
	ChargeId        string
	ChargeStatus    ChargeStatus
	Outcome         PaymentOutcome
	RawPayload      []byte
	OccurredAt      time.Time
	CreatedAt       time.Time
}
