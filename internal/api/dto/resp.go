package dto

import "time"

type TenantResponse struct {
	Identifier string `json:"identifier" example:"tenant1"`
	Name       string `json:"name" example:"Tenant 1"`
}

type CompanyResponse struct {
	ID   string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name string `json:"name" example:"Acme Corp"`
}

type SaleResponse struct {
	ID        string           `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Amount    float64          `json:"amount" example:"199.99"`
	CreatedAt time.Time        `json:"created_at" example:"2025-07-17T21:20:48Z"`
	CompanyID string           `json:"company_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Company   *CompanyResponse `json:"company,omitempty"`
}

type SalePageResponse struct {
	Items    []SaleResponse `json:"items"`
	Page     int            `json:"page" example:"1"`
	PageSize int            `json:"page_size" example:"10"`
}

// NotificationResponse reports a fan-out that completed with no delivery
// errors. Partial failures are returned as errors instead.
type NotificationResponse struct {
	Method string `json:"method" example:"ReceiveNotification"`
	Status string `json:"status" example:"sent"`
}
