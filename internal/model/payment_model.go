package model

import (
	"time"

	"gorm.io/datatypes"
)

// ProcessedCharge is keyed by (charge_id, charge_status); the composite
// primary key is what serializes concurrent deliveries of the same event.
type ProcessedCharge struct {
	ChargeId     string    `gorm:"type:varchar(255);primaryKey"`
	ChargeStatus string    `gorm:"type:varchar(20);primaryKey"`
	OccurredAt   time.Time `gorm:"not null"`
	ProcessedAt  time.Time `gorm:"not null;index"`
}

func (ProcessedCharge) TableName() string {
	return "processed_charges"
}

type PaymentAuditRecord struct {
	Id              string         `gorm:"type:varchar(36);primaryKey"`
	AccountId       int64          `gorm:"not null;index"`
	ProviderEventId string         `gorm:"type:varchar(255)"`
	ChargeId        string         `gorm:"type:varchar(255);not null;index"`
	ChargeStatus    string         `gorm:"type:varchar(20);not null"`
	Outcome         string         `gorm:"type:varchar(20);not null"`
	RawPayload      datatypes.JSON `gorm:"not null"`
	OccurredAt      time.Time      `gorm:"not null"`
	CreatedAt       time.Time      `gorm:"autoCreateTime"`
}

func (PaymentAuditRecord) TableName() string {
	return "payment_audit_records"
}

// All lists every table owned by this service, in migration order.
func All() []interface{} {
	return []interface{}{
		&Account{},
		&ChargeCorrelation{},
		&Freight{},
		&ProcessedCharge{},
		&PaymentAuditRecord{},
	}
}
