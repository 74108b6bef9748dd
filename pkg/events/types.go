package events

import "time"

const (
	FreightCreated     = "FREIGHT_CREATED"
	FreightReactivated = "FREIGHT_REACTIVATED"
	FreightCompleted   = "FREIGHT_COMPLETED"
	FreightCancelled   = "FREIGHT_CANCELLED"

	TrialActivated        = "TRIAL_ACTIVATED"
	SubscriptionCancelled = "SUBSCRIPTION_CANCELLED"
	ChargeRegistered      = "CHARGE_REGISTERED"
	PaymentApplied        = "PAYMENT_APPLIED"

	// Operator-facing rejections raised by the reconciler.
	PaymentMalformed      = "PAYMENT_EVENT_MALFORMED"
	PaymentUnknownAccount = "PAYMENT_EVENT_UNKNOWN_ACCOUNT"
	PaymentStaleRefund    = "PAYMENT_STALE_REFUND"
	PaymentRefundedCharge = "PAYMENT_COMPLETED_AFTER_REFUND"
)

func New(eventType string, at time.Time, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: at}
}
