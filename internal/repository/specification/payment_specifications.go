package specification

import "gorm.io/gorm"

type ByCorrelationID struct {
	CorrelationID string
}

func (s ByCorrelationID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("correlation_id = ?", s.CorrelationID)
}

type ByAccountID struct {
	AccountID int64
}

func (s ByAccountID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("account_id = ?", s.AccountID)
}

type ByChargeID struct {
	ChargeID string
}

func (s ByChargeID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("charge_id = ?", s.ChargeID)
}
