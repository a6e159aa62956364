package models

import "time"

// SKU is one approved product filing. Uniquely keyed by its TTB ID and owned
// by exactly one brand at a time; ownership moves only during consolidation.
type SKU struct {
	TTBID                string    `json:"ttb_id"`
	BrandName            string    `json:"brand_name"`
	PermitNumber         string    `json:"permit_number"`
	SerialNumber         string    `json:"serial_number,omitempty"`
	CompletionDate       string    `json:"completion_date,omitempty"`
	FancifulName         string    `json:"fanciful_name,omitempty"`
	Origin               string    `json:"origin,omitempty"`
	OriginDescription    string    `json:"origin_description,omitempty"`
	ClassType            string    `json:"class_type,omitempty"`
	ClassTypeDescription string    `json:"class_type_description,omitempty"`
	AddedAt              time.Time `json:"added_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
