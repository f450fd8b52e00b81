package domain

// Company is tenant-tagged; TenantID is owned by the data gateway and never
// serialized to API consumers.
type Company struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	TenantID string `gorm:"type:uuid;not null;index" json:"-"`
	Name     string `gorm:"type:varchar(256);not null" json:"name"`
}

func (Company) TableName() string {
	return "companies"
}
