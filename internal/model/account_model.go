package model

import "time"

type Account struct {
	Id                 int64  `gorm:"primaryKey;autoIncrement"`
	ClientId           *int64 `gorm:"index"`
	SubscriptionState  string `gorm:"type:varchar(20);not null;default:none"`
	TrialUsed          bool   `gorm:"not null;default:false"`
	ExpiresAt          *time.Time
	PlanType           *string   `gorm:"type:varchar(20)"`
	CancelPending      bool      `gorm:"not null;default:false"`
	LastAppliedEventId *string   `gorm:"type:varchar(255)"`
	BasisChargeId      *string   `gorm:"type:varchar(255)"`
	Version            int64     `gorm:"not null;default:1"`
	CreatedAt          time.Time `gorm:"autoCreateTime"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime:false"`
}

func (Account) TableName() string {
	return "accounts"
}

type ChargeCorrelation struct {
	CorrelationId string    `gorm:"type:varchar(64);primaryKey"`
	AccountId     int64     `gorm:"not null;index"`
	PlanType      string    `gorm:"type:varchar(20);not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (ChargeCorrelation) TableName() string {
	return "charge_correlations"
}
