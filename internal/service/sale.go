package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/kingrain94/tenant-notify-api/internal/domain"
	"github.com/kingrain94/tenant-notify-api/internal/repository"
	"github.com/kingrain94/tenant-notify-api/pkg/logger"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100

	// Offsets past this point return empty pages anyway.
	maxOffset = math.MaxInt32
)

type SaleService struct {
	repo   repository.Repository
	events ChangePublisher
	logger *logger.Logger
}

func NewSaleService(repo repository.Repository, events ChangePublisher, logger *logger.Logger) *SaleService {
	return &SaleService{
		repo:   repo,
		events: events,
		logger: logger,
	}
}

// ListByCompany returns one page of a company's sales. The filter is
// normalized in place so callers can echo the effective page.
func (s *SaleService) ListByCompany(ctx context.Context, filter *domain.SaleFilter) ([]domain.Sale, error) {
	// Set default values for pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = defaultPageSize
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}
	if maxPage := maxOffset/filter.PageSize + 1; filter.Page > maxPage {
		filter.Page = maxPage
	}
	filter.Limit = filter.PageSize
	filter.Offset = (filter.Page - 1) * filter.PageSize

	exists, err := s.repo.Company().Exists(ctx, filter.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to check company: %w", err)
	}
	if !exists {
		return nil, ErrCompanyNotFound
	}

	return s.repo.Sale().List(ctx, *filter)
}

func (s *SaleService) Get(ctx context.Context, id string) (*domain.Sale, error) {
	sale, err := s.repo.Sale().GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSaleNotFound
	}
	return sale, err
}

// Create records a sale for a company of the active tenant. A company that
// exists only under another tenant is treated as missing.
func (s *SaleService) Create(ctx context.Context, companyID string, amount float64) (*domain.Sale, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	exists, err := s.repo.Company().Exists(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to check company: %w", err)
	}
	if !exists {
		return nil, ErrUnknownCompany
	}

	sale := &domain.Sale{
		CompanyID: companyID,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Sale().Create(ctx, sale); err != nil {
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}

	emitChange(ctx, s.events, s.logger, domain.EntitySale, domain.ActionCreate, sale.ID)
	return sale, nil
}
