package domain

// TenantInfo is a row of the tenant directory. Identifier is the external slug
// carried in tokens and headers; ID is the internal value stamped on every
// tenant-tagged record.
type TenantInfo struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	Identifier string `gorm:"type:text;not null;uniqueIndex" json:"identifier"`
	Name       string `gorm:"type:text;not null" json:"name"`
}

func (TenantInfo) TableName() string {
	return "tenants"
}
