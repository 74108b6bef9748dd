package entity

import "errors"

var (
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidTransition    = errors.New("invalid transition")
	ErrAlreadyUsed          = errors.New("trial already used")
	ErrAlreadyActive        = errors.New("subscription already active")
	ErrNoActiveSubscription = errors.New("no active subscription")
	ErrNotFound             = errors.New("not found")

	ErrMalformedEvent = errors.New("malformed payment event")
	ErrUnknownAccount = errors.New("unknown account for correlation")

	// ErrConflict is returned by the ledger when the key was inserted by a
	// concurrent writer. Callers treat it as already processed.
	ErrConflict = errors.New("ledger conflict")
	// ErrStaleWrite is a compare-and-set miss on a versioned record.
	ErrStaleWrite = errors.New("stale write")
	// ErrStoreBusy means the write could not be settled now and the caller
	// should retry later.
	ErrStoreBusy = errors.New("store busy")
)
