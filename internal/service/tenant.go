package service

import (
	"context"

	"github.com/kingrain94/tenant-notify-api/internal/domain"
	"github.com/kingrain94/tenant-notify-api/internal/repository"
	"github.com/kingrain94/tenant-notify-api/internal/tenancy"
)

type TenantService struct {
	repo repository.Repository
}

func NewTenantService(repo repository.Repository) *TenantService {
	return &TenantService{repo: repo}
}

// Current returns the tenant active in ctx.
func (s *TenantService) Current(ctx context.Context) (*domain.TenantInfo, error) {
	return tenancy.FromContext(ctx)
}

func (s *TenantService) List(ctx context.Context) ([]domain.TenantInfo, error) {
	return s.repo.Tenant().List(ctx)
}
