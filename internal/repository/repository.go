package repository

import (
	"context"

	"github.com/kingrain94/tenant-notify-api/internal/domain"
)

// CompanyRepository and SaleRepository run against the tenant-scoped
// connection: every call requires a tenant in ctx.

//go:generate mockery --name CompanyRepository --output ../mocks
type CompanyRepository interface {
	List(ctx context.Context) ([]domain.Company, error)
	GetByID(ctx context.Context, id string) (*domain.Company, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, company *domain.Company) error
	Update(ctx context.Context, company *domain.Company) error
	Delete(ctx context.Context, id string) error
}

//go:generate mockery --name SaleRepository --output ../mocks
type SaleRepository interface {
	List(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error)
	GetByID(ctx context.Context, id string) (*domain.Sale, error)
	Create(ctx context.Context, sale *domain.Sale) error
}

//go:generate mockery --name TenantRepository --output ../mocks
type TenantRepository interface {
	Create(ctx context.Context, tenant *domain.TenantInfo) (*domain.TenantInfo, error)
	GetByIdentifier(ctx context.Context, identifier string) (*domain.TenantInfo, error)
	List(ctx context.Context) ([]domain.TenantInfo, error)
}

//go:generate mockery --name Repository --output ../mocks
type Repository interface {
	Company() CompanyRepository
	Sale() SaleRepository
	Tenant() TenantRepository
}
