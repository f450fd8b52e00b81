package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/kingrain94/tenant-notify-api/internal/domain"
	"github.com/kingrain94/tenant-notify-api/internal/repository"
)

type Repository struct {
	mock.Mock
}

func (m *Repository) Company() repository.CompanyRepository {
	args := m.Called()
	return args.Get(0).(repository.CompanyRepository)
}

func (m *Repository) Sale() repository.SaleRepository {
	args := m.Called()
	return args.Get(0).(repository.SaleRepository)
}

func (m *Repository) Tenant() repository.TenantRepository {
	args := m.Called()
	return args.Get(0).(repository.TenantRepository)
}

type CompanyRepository struct {
	mock.Mock
}

func (m *CompanyRepository) List(ctx context.Context) ([]domain.Company, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Company), args.Error(1)
}

func (m *CompanyRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *CompanyRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *CompanyRepository) Create(ctx context.Context, company *domain.Company) error {
	args := m.Called(ctx, company)
	return args.Error(0)
}

func (m *CompanyRepository) Update(ctx context.Context, company *domain.Company) error {
	args := m.Called(ctx, company)
	return args.Error(0)
}

func (m *CompanyRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type SaleRepository struct {
	mock.Mock
}

func (m *SaleRepository) List(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Sale), args.Error(1)
}

func (m *SaleRepository) GetByID(ctx context.Context, id string) (*domain.Sale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sale), args.Error(1)
}

func (m *SaleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

type TenantRepository struct {
	mock.Mock
}

func (m *TenantRepository) Create(ctx context.Context, tenant *domain.TenantInfo) (*domain.TenantInfo, error) {
	args := m.Called(ctx, tenant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TenantInfo), args.Error(1)
}

func (m *TenantRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.TenantInfo, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TenantInfo), args.Error(1)
}

func (m *TenantRepository) List(ctx context.Context) ([]domain.TenantInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TenantInfo), args.Error(1)
}
