package service

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/kingrain94/tenant-notify-api/internal/domain"
	"github.com/kingrain94/tenant-notify-api/internal/mocks"
	"github.com/kingrain94/tenant-notify-api/internal/repository"
	"github.com/kingrain94/tenant-notify-api/internal/tenancy"
	"github.com/kingrain94/tenant-notify-api/pkg/logger"
)

type SaleServiceTestSuite struct {
	suite.Suite
	mockRepo    *mocks.Repository
	mockCompany *mocks.CompanyRepository
	mockSale    *mocks.SaleRepository
	mockEvents  *mocks.ChangePublisher
	service     *SaleService
	ctx         context.Context
}

func (s *SaleServiceTestSuite) SetupTest() {
	s.mockRepo = new(mocks.Repository)
	s.mockCompany = new(mocks.CompanyRepository)
	s.mockSale = new(mocks.SaleRepository)
	s.mockEvents = new(mocks.ChangePublisher)

	s.mockRepo.On("Company").Return(s.mockCompany)
	s.mockRepo.On("Sale").Return(s.mockSale)

	s.service = NewSaleService(s.mockRepo, s.mockEvents, logger.NewNop())

	var err error
	s.ctx, err = tenancy.WithTenant(context.Background(), &domain.TenantInfo{ID: "id-acme", Identifier: "acme"})
	s.Require().NoError(err)
}

func TestSaleService(t *testing.T) {
	suite.Run(t, new(SaleServiceTestSuite))
}

func (s *SaleServiceTestSuite) TestListByCompany_Defaults() {
	filter := &domain.SaleFilter{CompanyID: "c-1"}
	s.mockCompany.On("Exists", s.ctx, "c-1").Return(true, nil)
	s.mockSale.On("List", s.ctx, domain.SaleFilter{CompanyID: "c-1", Page: 1, PageSize: 10, Limit: 10, Offset: 0}).
		Return([]domain.Sale{{ID: "s-1"}}, nil)

	sales, err := s.service.ListByCompany(s.ctx, filter)

	s.NoError(err)
	s.Len(sales, 1)
	s.Equal(1, filter.Page)
	s.Equal(10, filter.PageSize)
}

func (s *SaleServiceTestSuite) TestListByCompany_PageSizeCapped() {
	filter := &domain.SaleFilter{CompanyID: "c-1", Page: 3, PageSize: 500}
	s.mockCompany.On("Exists", s.ctx, "c-1").Return(true, nil)
	s.mockSale.On("List", s.ctx, domain.SaleFilter{CompanyID: "c-1", Page: 3, PageSize: 100, Limit: 100, Offset: 200}).
		Return([]domain.Sale{}, nil)

	_, err := s.service.ListByCompany(s.ctx, filter)

	s.NoError(err)
	s.mockSale.AssertExpectations(s.T())
}

func (s *SaleServiceTestSuite) TestListByCompany_HugePageStaysPastTheEnd() {
	filter := &domain.SaleFilter{CompanyID: "c-1", Page: math.MaxInt, PageSize: 10}
	want := domain.SaleFilter{CompanyID: "c-1", Page: 214748365, PageSize: 10, Limit: 10, Offset: 2147483640}
	s.mockCompany.On("Exists", s.ctx, "c-1").Return(true, nil)
	s.mockSale.On("List", s.ctx, want).Return([]domain.Sale{}, nil)

	sales, err := s.service.ListByCompany(s.ctx, filter)

	s.NoError(err)
	s.Empty(sales)
	s.Positive(filter.Offset)
	s.mockSale.AssertExpectations(s.T())
}

func (s *SaleServiceTestSuite) TestListByCompany_CompanyOutOfScope() {
	s.mockCompany.On("Exists", s.ctx, "c-other").Return(false, nil)

	_, err := s.service.ListByCompany(s.ctx, &domain.SaleFilter{CompanyID: "c-other"})

	s.ErrorIs(err, ErrCompanyNotFound)
	s.mockSale.AssertNotCalled(s.T(), "List", mock.Anything, mock.Anything)
}

func (s *SaleServiceTestSuite) TestCreate_Success() {
	s.mockCompany.On("Exists", s.ctx, "c-1").Return(true, nil)
	s.mockSale.On("Create", s.ctx, mock.MatchedBy(func(sale *domain.Sale) bool {
		return sale.CompanyID == "c-1" && sale.Amount == 42.5 && !sale.CreatedAt.IsZero()
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Sale).ID = "s-1"
	}).Return(nil)
	s.mockEvents.On("SendChangeEvent", s.ctx, mock.MatchedBy(func(event domain.ChangeEvent) bool {
		return event.Entity == domain.EntitySale && event.EntityID == "s-1"
	})).Return(nil)

	sale, err := s.service.Create(s.ctx, "c-1", 42.5)

	s.NoError(err)
	s.Equal("s-1", sale.ID)
	s.mockEvents.AssertExpectations(s.T())
}

func (s *SaleServiceTestSuite) TestCreate_UnknownCompany() {
	s.mockCompany.On("Exists", s.ctx, "c-other").Return(false, nil)

	_, err := s.service.Create(s.ctx, "c-other", 10)

	s.ErrorIs(err, ErrUnknownCompany)
	s.mockSale.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func (s *SaleServiceTestSuite) TestCreate_InvalidAmount() {
	_, err := s.service.Create(s.ctx, "c-1", 0)

	s.ErrorIs(err, ErrInvalidAmount)
}

func (s *SaleServiceTestSuite) TestGet_NotFound() {
	s.mockSale.On("GetByID", s.ctx, "s-x").Return(nil, repository.ErrNotFound)

	_, err := s.service.Get(s.ctx, "s-x")

	s.ErrorIs(err, ErrSaleNotFound)
}
