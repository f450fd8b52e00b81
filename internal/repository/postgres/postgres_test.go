package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kingrain94/tenant-notify-api/internal/domain"
	"github.com/kingrain94/tenant-notify-api/internal/repository"
	"github.com/kingrain94/tenant-notify-api/internal/service"
	"github.com/kingrain94/tenant-notify-api/internal/tenancy"
	"github.com/kingrain94/tenant-notify-api/pkg/logger"
)

type RepositoryTestSuite struct {
	suite.Suite
	db        *gorm.DB
	repo      repository.Repository
	acme      *domain.TenantInfo
	globex    *domain.TenantInfo
	acmeCtx   context.Context
	globexCtx context.Context
}

func TestRepository(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func (s *RepositoryTestSuite) SetupTest() {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	s.Require().NoError(err)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	s.T().Cleanup(func() { _ = sqlDB.Close() })

	s.Require().NoError(db.AutoMigrate(&domain.TenantInfo{}, &domain.Company{}, &domain.Sale{}))
	s.Require().NoError(db.Use(tenancy.NewPlugin(tenancy.MismatchReject)))
	s.db = db
	s.repo = NewRepository(db, db)

	ctx := context.Background()
	s.acme, err = s.repo.Tenant().Create(ctx, &domain.TenantInfo{Identifier: "acme", Name: "Acme"})
	s.Require().NoError(err)
	s.globex, err = s.repo.Tenant().Create(ctx, &domain.TenantInfo{Identifier: "globex", Name: "Globex"})
	s.Require().NoError(err)

	s.acmeCtx, err = tenancy.WithTenant(ctx, s.acme)
	s.Require().NoError(err)
	s.globexCtx, err = tenancy.WithTenant(ctx, s.globex)
	s.Require().NoError(err)
}

func (s *RepositoryTestSuite) TestTenantDirectory() {
	tenant, err := s.repo.Tenant().GetByIdentifier(context.Background(), "globex")
	s.Require().NoError(err)
	s.Equal(s.globex.ID, tenant.ID)

	_, err = s.repo.Tenant().GetByIdentifier(context.Background(), "initech")
	s.ErrorIs(err, tenancy.ErrTenantNotFound)

	tenants, err := s.repo.Tenant().List(context.Background())
	s.Require().NoError(err)
	s.Len(tenants, 2)
	s.Equal("acme", tenants[0].Identifier)
}

func (s *RepositoryTestSuite) TestCompanyCRUD() {
	companies := s.repo.Company()
	company := &domain.Company{Name: "Acme Corp"}

	s.Require().NoError(companies.Create(s.acmeCtx, company))
	s.NotEmpty(company.ID)
	s.Equal(s.acme.ID, company.TenantID)

	got, err := companies.GetByID(s.acmeCtx, company.ID)
	s.Require().NoError(err)
	s.Equal("Acme Corp", got.Name)

	exists, err := companies.Exists(s.acmeCtx, company.ID)
	s.Require().NoError(err)
	s.True(exists)

	s.Require().NoError(companies.Update(s.acmeCtx, &domain.Company{ID: company.ID, Name: "Acme Corporation"}))
	got, err = companies.GetByID(s.acmeCtx, company.ID)
	s.Require().NoError(err)
	s.Equal("Acme Corporation", got.Name)

	s.Require().NoError(companies.Delete(s.acmeCtx, company.ID))
	_, err = companies.GetByID(s.acmeCtx, company.ID)
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *RepositoryTestSuite) TestCompanyInvisibleToOtherTenant() {
	company := &domain.Company{Name: "Acme Corp"}
	s.Require().NoError(s.repo.Company().Create(s.acmeCtx, company))

	_, err := s.repo.Company().GetByID(s.globexCtx, company.ID)
	s.ErrorIs(err, repository.ErrNotFound)

	exists, err := s.repo.Company().Exists(s.globexCtx, company.ID)
	s.Require().NoError(err)
	s.False(exists)

	err = s.repo.Company().Update(s.globexCtx, &domain.Company{ID: company.ID, Name: "Hijacked"})
	s.ErrorIs(err, repository.ErrNotFound)

	err = s.repo.Company().Delete(s.globexCtx, company.ID)
	s.ErrorIs(err, repository.ErrNotFound)

	list, err := s.repo.Company().List(s.globexCtx)
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *RepositoryTestSuite) TestDeleteCascadesToSales() {
	company := &domain.Company{Name: "Acme Corp"}
	s.Require().NoError(s.repo.Company().Create(s.acmeCtx, company))
	for i := 0; i < 3; i++ {
		sale := &domain.Sale{CompanyID: company.ID, Amount: float64(i + 1), CreatedAt: time.Now().UTC()}
		s.Require().NoError(s.repo.Sale().Create(s.acmeCtx, sale))
	}

	s.Require().NoError(s.repo.Company().Delete(s.acmeCtx, company.ID))

	var count int64
	s.Require().NoError(s.db.WithContext(s.acmeCtx).Model(&domain.Sale{}).Count(&count).Error)
	s.Zero(count)
}

func (s *RepositoryTestSuite) TestSalesPaging() {
	company := &domain.Company{Name: "Acme Corp"}
	s.Require().NoError(s.repo.Company().Create(s.acmeCtx, company))
	for i := 0; i < 5; i++ {
		sale := &domain.Sale{CompanyID: company.ID, Amount: 10, CreatedAt: time.Now().UTC()}
		s.Require().NoError(s.repo.Sale().Create(s.acmeCtx, sale))
	}

	page, err := s.repo.Sale().List(s.acmeCtx, domain.SaleFilter{CompanyID: company.ID, Limit: 2, Offset: 4})
	s.Require().NoError(err)
	s.Len(page, 1)
	s.Require().NotNil(page[0].Company)
	s.Equal("Acme Corp", page[0].Company.Name)

	other, err := s.repo.Sale().List(s.globexCtx, domain.SaleFilter{CompanyID: company.ID, Limit: 10})
	s.Require().NoError(err)
	s.Empty(other)
}

func (s *RepositoryTestSuite) TestSaleGetByID() {
	company := &domain.Company{Name: "Acme Corp"}
	s.Require().NoError(s.repo.Company().Create(s.acmeCtx, company))
	sale := &domain.Sale{CompanyID: company.ID, Amount: 99.5, CreatedAt: time.Now().UTC()}
	s.Require().NoError(s.repo.Sale().Create(s.acmeCtx, sale))

	got, err := s.repo.Sale().GetByID(s.acmeCtx, sale.ID)
	s.Require().NoError(err)
	s.Equal(99.5, got.Amount)
	s.Equal(s.acme.ID, got.TenantID)

	_, err = s.repo.Sale().GetByID(s.globexCtx, sale.ID)
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *RepositoryTestSuite) TestNoTenantNoAccess() {
	_, err := s.repo.Company().List(context.Background())
	s.ErrorIs(err, tenancy.ErrTenantNotSet)

	err = s.repo.Company().Create(context.Background(), &domain.Company{Name: "Orphan"})
	s.ErrorIs(err, tenancy.ErrTenantNotSet)
}

func (s *RepositoryTestSuite) TestCrossTenantSaleScenario() {
	companies := service.NewCompanyService(s.repo, nil, logger.NewNop())
	sales := service.NewSaleService(s.repo, nil, logger.NewNop())

	acmeCorp, err := companies.Create(s.acmeCtx, "Acme Corp")
	s.Require().NoError(err)

	_, err = sales.Create(s.globexCtx, acmeCorp.ID, 100)
	s.ErrorIs(err, service.ErrUnknownCompany)

	_, err = sales.ListByCompany(s.globexCtx, &domain.SaleFilter{CompanyID: acmeCorp.ID})
	s.ErrorIs(err, service.ErrCompanyNotFound)

	sale, err := sales.Create(s.acmeCtx, acmeCorp.ID, 100)
	s.Require().NoError(err)
	list, err := sales.ListByCompany(s.acmeCtx, &domain.SaleFilter{CompanyID: acmeCorp.ID})
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(sale.ID, list[0].ID)
}
