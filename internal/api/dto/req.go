package dto

import "encoding/json"

// ResourceURI binds the :id path parameter. Ids are uuids; anything else
// cannot name a record.
type ResourceURI struct {
	ID string `uri:"id" binding:"required,uuid"`
}

type CreateCompanyRequest struct {
	Name string `json:"name" binding:"required,max=256" example:"Acme Corp"`
}

type UpdateCompanyRequest struct {
	Name string `json:"name" binding:"required,max=256" example:"Acme Corporation"`
}

type CreateSaleRequest struct {
	CompanyID string  `json:"company_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Amount    float64 `json:"amount" binding:"required,gt=0" example:"199.99"`
}

type ListSalesRequest struct {
	CompanyID string `form:"companyId" binding:"required,uuid"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
}

// NotificationRequest is the body of the administrative send endpoints.
type NotificationRequest struct {
	Method  string          `json:"method" binding:"required" example:"ReceiveNotification"`
	Payload json.RawMessage `json:"payload"`
}

type UserNotificationRequest struct {
	UserIDs []string        `json:"user_ids" binding:"required,min=1"`
	Method  string          `json:"method" binding:"required" example:"ReceiveNotification"`
	Payload json.RawMessage `json:"payload"`
}
