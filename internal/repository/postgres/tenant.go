package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kingrain94/tenant-notify-api/internal/domain"
	"github.com/kingrain94/tenant-notify-api/internal/tenancy"
)

type TenantRepository struct {
	writerDB *gorm.DB
	readerDB *gorm.DB
}

func NewTenantRepository(writerDB, readerDB *gorm.DB) *TenantRepository {
	return &TenantRepository{
		writerDB: writerDB,
		readerDB: readerDB,
	}
}

func (r *TenantRepository) Create(ctx context.Context, tenant *domain.TenantInfo) (*domain.TenantInfo, error) {
	if tenant.ID == "" {
		tenant.ID = uuid.New().String()
	}
	if err := r.writerDB.WithContext(ctx).Create(tenant).Error; err != nil {
		return nil, err
	}
	return tenant, nil
}

// GetByIdentifier implements tenancy.Directory.
func (r *TenantRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.TenantInfo, error) {
	var tenant domain.TenantInfo
	err := r.readerDB.WithContext(ctx).First(&tenant, "identifier = ?", identifier).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, tenancy.ErrTenantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *TenantRepository) List(ctx context.Context) ([]domain.TenantInfo, error) {
	var tenants []domain.TenantInfo
	if err := r.readerDB.WithContext(ctx).Order("identifier").Find(&tenants).Error; err != nil {
		return nil, err
	}
	return tenants, nil
}
