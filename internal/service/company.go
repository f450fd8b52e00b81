package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kingrain94/tenant-notify-api/internal/domain"
	"github.com/kingrain94/tenant-notify-api/internal/repository"
	"github.com/kingrain94/tenant-notify-api/pkg/logger"
)

// CompanyService works on the companies of the tenant active in ctx.
type CompanyService struct {
	repo   repository.Repository
	events ChangePublisher
	logger *logger.Logger
}

func NewCompanyService(repo repository.Repository, events ChangePublisher, logger *logger.Logger) *CompanyService {
	return &CompanyService{
		repo:   repo,
		events: events,
		logger: logger,
	}
}

func (s *CompanyService) List(ctx context.Context) ([]domain.Company, error) {
	return s.repo.Company().List(ctx)
}

func (s *CompanyService) Get(ctx context.Context, id string) (*domain.Company, error) {
	company, err := s.repo.Company().GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCompanyNotFound
	}
	return company, err
}

func (s *CompanyService) Create(ctx context.Context, name string) (*domain.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	company := &domain.Company{Name: name}
	if err := s.repo.Company().Create(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	emitChange(ctx, s.events, s.logger, domain.EntityCompany, domain.ActionCreate, company.ID)
	return company, nil
}

func (s *CompanyService) Update(ctx context.Context, id, name string) (*domain.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	company := &domain.Company{ID: id, Name: name}
	if err := s.repo.Company().Update(ctx, company); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to update company: %w", err)
	}

	emitChange(ctx, s.events, s.logger, domain.EntityCompany, domain.ActionUpdate, id)
	return company, nil
}

// Delete removes the company together with its sales.
func (s *CompanyService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Company().Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCompanyNotFound
		}
		return fmt.Errorf("failed to delete company: %w", err)
	}

	emitChange(ctx, s.events, s.logger, domain.EntityCompany, domain.ActionDelete, id)
	return nil
}
