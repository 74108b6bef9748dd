package lifecycle

import (
	"time"

	"freight-broker-be/internal/entity"
	"freight-broker-be/pkg/clock"
)

// DeriveSubscriptionState returns the state a reader must see at now.
func DeriveSubscriptionState(a *entity.Account, now time.Time) entity.SubscriptionState {
	if a.ExpiresAt == nil || !now.After(*a.ExpiresAt) {
		return a.SubscriptionState
	}
	switch a.SubscriptionState {
	case entity.SubscriptionStatePaid:
		return entity.SubscriptionStatePaidExpired
	case entity.SubscriptionStateTrialActive:
		return entity.SubscriptionStateTrialUsed
	}
	return a.SubscriptionState
}

// ActivateTrial grants the single trial of an account. TrialUsed is set in the
// same step so a retried request cannot obtain a second trial.
func ActivateTrial(a *entity.Account, now time.Time) error {
	if a.TrialUsed {
		return entity.ErrAlreadyUsed
	}
	if DeriveSubscriptionState(a, now) == entity.SubscriptionStatePaid {
		return entity.ErrAlreadyActive
	}
	exp := clock.TrialExpiration(now)
	a.SubscriptionState = entity.SubscriptionStateTrialActive
	a.ExpiresAt = &exp
	a.TrialUsed = true
	a.UpdatedAt = now
	return nil
}

// ApplyPayment folds one deduplicated charge status into the account and
// reports whether the subscription state changed. Statuses other than
// completed and refunded leave the state untouched.
func ApplyPayment(a *entity.Account, chargeId string, status entity.ChargeStatus, plan entity.PlanType, now time.Time) bool {
	switch status {
	case entity.ChargeStatusCompleted:
		exp := clock.PaidExpiration(now, plan == entity.PlanTypeAnnual)
		a.SubscriptionState = entity.SubscriptionStatePaid
		a.PlanType = &plan
		a.ExpiresAt = &exp
		a.CancelPending = false
		a.BasisChargeId = &chargeId
	case entity.ChargeStatusRefunded:
		revokedAt := now
		a.SubscriptionState = entity.SubscriptionStatePaidExpired
		a.ExpiresAt = &revokedAt
	default:
		return false
	}
	a.UpdatedAt = now
	return true
}

// IsRefundOfStaleCharge reports a refund for a charge other than the one that
// established the current paid period. Applying it may revoke a renewal.
func IsRefundOfStaleCharge(a *entity.Account, chargeId string, status entity.ChargeStatus) bool {
	if status != entity.ChargeStatusRefunded || a.BasisChargeId == nil {
		return false
	}
	return *a.BasisChargeId != chargeId
}

// CancelSubscription marks a paid subscription to lapse at ExpiresAt. Access
// is kept until then.
func CancelSubscription(a *entity.Account, now time.Time) error {
	if DeriveSubscriptionState(a, now) != entity.SubscriptionStatePaid {
		return entity.ErrNoActiveSubscription
	}
	a.CancelPending = true
	a.UpdatedAt = now
	return nil
}
