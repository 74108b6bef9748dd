package dto

import "time"

// PixWebhookRequest is the provider notification body. Unknown fields are
// ignored.
type PixWebhookRequest struct {
	EventId       string  `json:"eventId"`
	ChargeId      string  `json:"chargeId" validate:"required,max=255"`
	CorrelationId string  `json:"correlationId" validate:"required,max=64"`
	Status        string  `json:"status" validate:"required,oneof=created active completed expired refunded"`
	PlanType      *string `json:"planType" validate:"omitempty,oneof=monthly annual"`
	OccurredAt    string  `json:"occurredAt" validate:"required"`
}

type WebhookAckResponse struct {
	Outcome  string `json:"outcome"`
	ChargeId string `json:"chargeId,omitempty"`
}

// AuditQuery selects payment audit records by account or by charge, newest first.
type AuditQuery struct {
	AccountId *int64
	ChargeId  string
	Limit     int
}

type PaymentAuditResponse struct {
	ChargeId        string    `json:"chargeId"`
	ChargeStatus    string    `json:"chargeStatus"`
	Outcome         string    `json:"outcome"`
	AccountId       int64     `json:"accountId"`
	ProviderEventId string    `json:"providerEventId,omitempty"`
	OccurredAt      time.Time `json:"occurredAt"`
	CreatedAt       time.Time `json:"createdAt"`
}
