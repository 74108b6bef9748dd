// Package authz decides whether an authenticated actor may mutate a freight
// or an account. Decisions are pure functions of the actor and the record.
package authz

import "freight-broker-be/internal/entity"

// CanMutateFreight is evaluated in order: admin, driver, owning account, and
// finally the owning client for records created before account ownership
// existed.
func CanMutateFreight(actor entity.Actor, f *entity.Freight) bool {
	if f == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	if actor.IsDriver() || actor.Role == entity.RoleUnknown {
		return false
	}
	if f.OwnerAccountId != nil {
		return *f.OwnerAccountId == actor.Id
	}
	if f.OwnerClientId != nil && actor.ClientId != nil {
		return *f.OwnerClientId == *actor.ClientId
	}
	return false
}

func CanMutateAccount(actor entity.Actor, a *entity.Account) bool {
	if a == nil {
		return false
	}
	return actor.IsAdmin() || actor.Id == a.Id
}

// CanCreateFreight allows every known role except drivers.
func CanCreateFreight(actor entity.Actor) bool {
	return actor.Role != entity.RoleUnknown && !actor.IsDriver()
}
