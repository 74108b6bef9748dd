package entity

import "time"

type SubscriptionState string
type PlanType string

const (
	SubscriptionStateNone        SubscriptionState = "none"
	SubscriptionStateTrialActive SubscriptionState = "trialActive"
	SubscriptionStateTrialUsed   SubscriptionState = "trialUsed"
	SubscriptionStatePaid        SubscriptionState = "paid"
	SubscriptionStatePaidExpired SubscriptionState = "paidExpired"

	PlanTypeMonthly PlanType = "monthly"
	PlanTypeAnnual  PlanType = "annual"
)

func (p PlanType) Valid() bool {
	return p == PlanTypeMonthly || p == PlanTypeAnnual
}

type Account struct {
	Id                 int64
	ClientId           *int64
	SubscriptionState  SubscriptionState
	TrialUsed          bool
	ExpiresAt          *time.Time
	PlanType           *PlanType
	CancelPending      bool
	LastAppliedEventId *string
	// BasisChargeId is the charge whose completion set the current ExpiresAt.
	BasisChargeId *string
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ChargeCorrelation links a provider charge back to the account that started checkout.
type ChargeCorrelation struct {
	CorrelationId string
	AccountId     int64
	PlanType      PlanType
	CreatedAt     time.Time
}
