package model

import "time"

type Freight struct {
	Id                int64      `gorm:"primaryKey;autoIncrement"`
	Origin            string     `gorm:"type:varchar(255);not null"`
	Destination       string     `gorm:"type:varchar(255);not null"`
	Status            string     `gorm:"type:varchar(20);not null;index"`
	ExpirationInstant *time.Time `gorm:"index"`
	OwnerAccountId    *int64     `gorm:"index"`
	OwnerClientId     *int64     `gorm:"index"`
	Version           int64      `gorm:"not null;default:1"`
	CreatedAt         time.Time  `gorm:"autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime:false"`
}

func (Freight) TableName() string {
	return "freights"
}
