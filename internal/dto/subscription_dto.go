package dto

import "time"

type SubscriptionStatusResponse struct {
	AccountId     int64      `json:"accountId"`
	State         string     `json:"state"`
	ExpiresAt     *time.Time `json:"expiresAt"`
	PlanType      *string    `json:"planType"`
	CancelPending bool       `json:"cancelPending"`
	TrialUsed     bool       `json:"trialUsed"`
	DaysRemaining int        `json:"daysRemaining"`
}

type RegisterChargeRequest struct {
	PlanType string `json:"planType" validate:"required,oneof=monthly annual"`
}

type RegisterChargeResponse struct {
	CorrelationId string `json:"correlationId"`
	AccountId     int64  `json:"accountId"`
	PlanType      string `json:"planType"`
}
