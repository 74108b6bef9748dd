// Package lifecycle holds the pure state transitions of freights and
// subscriptions. Nothing here performs I/O or reads the wall clock; callers
// pass the instant explicitly.
package lifecycle

import (
	"time"

	"freight-broker-be/internal/entity"
	"freight-broker-be/pkg/clock"
)

// DeriveFreightStatus returns the status a reader must see at now.
func DeriveFreightStatus(f *entity.Freight, now time.Time) entity.FreightStatus {
	if f.Status.IsTerminal() {
		return f.Status
	}
	if f.Status == entity.FreightStatusOpen || f.Status == entity.FreightStatusActive {
		if f.ExpirationInstant != nil && now.After(*f.ExpirationInstant) {
			return entity.FreightStatusExpired
		}
	}
	return f.Status
}

// NewFreight builds a listing owned by actor. Authorization is the caller's job.
func NewFreight(draft entity.FreightDraft, actor entity.Actor, now time.Time) *entity.Freight {
	ownerId := actor.Id
	f := &entity.Freight{
		Origin:         draft.Origin,
		Destination:    draft.Destination,
		OwnerAccountId: &ownerId,
		OwnerClientId:  actor.ClientId,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if draft.NoExpiry {
		f.Status = entity.FreightStatusOpen
		return f
	}
	exp := clock.FreightExpiration(now)
	f.Status = entity.FreightStatusActive
	f.ExpirationInstant = &exp
	return f
}

// Reactivate opens a fresh 24h window. Terminal freights cannot come back.
func Reactivate(f *entity.Freight, now time.Time) error {
	if f.Status.IsTerminal() {
		return entity.ErrInvalidTransition
	}
	exp := clock.FreightExpiration(now)
	f.Status = entity.FreightStatusActive
	f.ExpirationInstant = &exp
	f.UpdatedAt = now
	return nil
}

// Close moves a freight into a terminal status (completed or cancelled).
func Close(f *entity.Freight, to entity.FreightStatus, now time.Time) error {
	if !to.IsTerminal() || f.Status.IsTerminal() {
		return entity.ErrInvalidTransition
	}
	f.Status = to
	f.UpdatedAt = now
	return nil
}
