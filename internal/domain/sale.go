package domain

import "time"

type Sale struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	TenantID  string    `gorm:"type:uuid;not null;index" json:"-"`
	Amount    float64   `gorm:"type:numeric(18,2);not null" json:"amount"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	CompanyID string    `gorm:"type:uuid;not null;index" json:"company_id"`
	Company   *Company  `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE" json:"company,omitempty"`
}

func (Sale) TableName() string {
	return "sales"
}

type SaleFilter struct {
	CompanyID string `json:"company_id"`
	Page      int    `json:"page"`
	PageSize  int    `json:"page_size"`
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
}
