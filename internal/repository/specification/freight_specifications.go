package specification

import (
	"time"

	"gorm.io/gorm"
)

// OwnedBy matches freights an actor can see as its own: the owning account,
// or, for records without an owning account, the owning client.
type OwnedBy struct {
	AccountID int64
	ClientID  *int64
}

func (s OwnedBy) Apply(db *gorm.DB) *gorm.DB {
	if s.ClientID == nil {
		return db.Where("owner_account_id = ?", s.AccountID)
	}
	return db.Where("owner_account_id = ? OR (owner_account_id IS NULL AND owner_client_id = ?)", s.AccountID, *s.ClientID)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// ByDerivedStatus matches the status a reader sees at Now, so an open or
// active listing whose window has elapsed counts as expired.
type ByDerivedStatus struct {
	Status string
	Now    time.Time
}

func (s ByDerivedStatus) Apply(db *gorm.DB) *gorm.DB {
	switch s.Status {
	case "open", "active":
		return ByStatus{Status: s.Status}.Apply(db).
			Where("(expiration_instant IS NULL OR expiration_instant >= ?)", s.Now)
	case "expired":
		return db.Where("(status = ? OR (status IN ? AND expiration_instant IS NOT NULL AND expiration_instant < ?))",
			"expired", []string{"open", "active"}, s.Now)
	}
	return ByStatus{Status: s.Status}.Apply(db)
}
