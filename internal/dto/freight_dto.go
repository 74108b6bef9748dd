package dto

import "time"

type CreateFreightRequest struct {
	Origin      string `json:"origin" validate:"required,max=255"`
	Destination string `json:"destination" validate:"required,max=255"`
	NoExpiry    bool   `json:"noExpiry"`
}

// FreightResponse always carries the derived status.
type FreightResponse struct {
	Id                int64      `json:"id"`
	Origin            string     `json:"origin"`
	Destination       string     `json:"destination"`
	Status            string     `json:"status"`
	ExpirationInstant *time.Time `json:"expirationInstant"`
	OwnerAccountId    *int64     `json:"ownerAccountId"`
	OwnerClientId     *int64     `json:"ownerClientId"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

type ListFreightsQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=open active expired completed cancelled"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int    `query:"offset" validate:"omitempty,min=0"`
}

type FreightListResponse struct {
	Items  []*FreightResponse `json:"items"`
	Total  int64              `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}
