package postgres

import (
	"gorm.io/gorm"

	"github.com/kingrain94/tenant-notify-api/internal/config"
	"github.com/kingrain94/tenant-notify-api/internal/repository"
)

type postgresRepository struct {
	companyRepo repository.CompanyRepository
	saleRepo    repository.SaleRepository
	tenantRepo  repository.TenantRepository
}

func NewPostgresRepository(dbConnections *config.DatabaseConnections) repository.Repository {
	return NewRepository(dbConnections.Writer, dbConnections.Reader)
}

// NewRepository builds the repository set on top of connections that already
// have the tenancy plugin installed.
func NewRepository(writerDB, readerDB *gorm.DB) repository.Repository {
	return &postgresRepository{
		companyRepo: NewCompanyRepository(writerDB, readerDB),
		saleRepo:    NewSaleRepository(writerDB, readerDB),
		tenantRepo:  NewTenantRepository(writerDB, readerDB),
	}
}

func (r *postgresRepository) Company() repository.CompanyRepository {
	return r.companyRepo
}

func (r *postgresRepository) Sale() repository.SaleRepository {
	return r.saleRepo
}

func (r *postgresRepository) Tenant() repository.TenantRepository {
	return r.tenantRepo
}
