package lifecycle

import (
	"reflect"
	"testing"
	"time"

	"freight-broker-be/internal/entity"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestDeriveFreightStatusPurity checks that derivation depends only on the
// stored fields and now, and never writes to the freight.
func TestDeriveFreightStatusPurity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	statuses := gen.OneConstOf(
		entity.FreightStatusOpen,
		entity.FreightStatusActive,
		entity.FreightStatusExpired,
		entity.FreightStatusCompleted,
		entity.FreightStatusCancelled,
	)

	properties.Property("derivation is deterministic and read-only", prop.ForAll(
		func(status entity.FreightStatus, hasExp bool, expOffset, nowOffset int64) bool {
			f := &entity.Freight{Id: 1, Status: status}
			if hasExp {
				exp := d0.Add(time.Duration(expOffset) * time.Second)
				f.ExpirationInstant = &exp
			}
			before := *f
			now := d0.Add(time.Duration(nowOffset) * time.Second)

			first := DeriveFreightStatus(f, now)
			second := DeriveFreightStatus(f, now)

			return first == second && reflect.DeepEqual(before, *f)
		},
		statuses,
		gen.Bool(),
		gen.Int64Range(-500000, 500000),
		gen.Int64Range(-500000, 500000),
	))

	properties.Property("terminal statuses never derive to anything else", prop.ForAll(
		func(nowOffset int64) bool {
			exp := d0
			for _, s := range []entity.FreightStatus{entity.FreightStatusCompleted, entity.FreightStatusCancelled} {
				f := &entity.Freight{Status: s, ExpirationInstant: &exp}
				if DeriveFreightStatus(f, d0.Add(time.Duration(nowOffset)*time.Second)) != s {
					return false
				}
			}
			return true
		},
		gen.Int64Range(-500000, 500000),
	))

	properties.TestingRun(t)
}

func TestDeriveSubscriptionStatePurity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	states := gen.OneConstOf(
		entity.SubscriptionStateNone,
		entity.SubscriptionStateTrialActive,
		entity.SubscriptionStateTrialUsed,
		entity.SubscriptionStatePaid,
		entity.SubscriptionStatePaidExpired,
	)

	properties.Property("derivation is deterministic and read-only", prop.ForAll(
		func(state entity.SubscriptionState, trialUsed bool, expOffset, nowOffset int64) bool {
			exp := d0.Add(time.Duration(expOffset) * time.Second)
			a := &entity.Account{Id: 1, SubscriptionState: state, TrialUsed: trialUsed, ExpiresAt: &exp}
			before := *a
			now := d0.Add(time.Duration(nowOffset) * time.Second)

			first := DeriveSubscriptionState(a, now)
			second := DeriveSubscriptionState(a, now)

			return first == second && reflect.DeepEqual(before, *a)
		},
		states,
		gen.Bool(),
		gen.Int64Range(-500000, 500000),
		gen.Int64Range(-500000, 500000),
	))

	properties.Property("a paid account never reads paid past its expiry", prop.ForAll(
		func(expOffset, lateBy int64) bool {
			exp := d0.Add(time.Duration(expOffset) * time.Second)
			a := &entity.Account{SubscriptionState: entity.SubscriptionStatePaid, ExpiresAt: &exp}
			return DeriveSubscriptionState(a, exp.Add(time.Duration(lateBy)*time.Second)) == entity.SubscriptionStatePaidExpired
		},
		gen.Int64Range(-500000, 500000),
		gen.Int64Range(1, 500000),
	))

	properties.TestingRun(t)
}
