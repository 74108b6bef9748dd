package entity

import "time"

type FreightStatus string

const (
	FreightStatusOpen      FreightStatus = "open"
	FreightStatusActive    FreightStatus = "active"
	FreightStatusExpired   FreightStatus = "expired"
	FreightStatusCompleted FreightStatus = "completed"
	FreightStatusCancelled FreightStatus = "cancelled"
)

// IsTerminal reports whether no further lifecycle transition is allowed.
func (s FreightStatus) IsTerminal() bool {
	return s == FreightStatusCompleted || s == FreightStatusCancelled
}

type Freight struct {
	Id                int64
	Origin            string
	Destination       string
	Status            FreightStatus
	ExpirationInstant *time.Time
	OwnerAccountId    *int64
	OwnerClientId     *int64
	Version           int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// FreightDraft carries the owner-supplied fields of a new listing.
type FreightDraft struct {
	Origin      string
	Destination string
	NoExpiry    bool
}
