package tenancy

import (
	"context"
	"fmt"

	"github.com/kingrain94/tenant-notify-api/internal/domain"
)

type tenantKey struct{}

// WithTenant binds tenant to ctx. A context carries at most one tenant for
// its whole lifetime, so a second bind on the same chain is refused.
func WithTenant(ctx context.Context, tenant *domain.TenantInfo) (context.Context, error) {
	if tenant == nil || tenant.ID == "" {
		return ctx, fmt.Errorf("%w: empty tenant", ErrTenantUnresolved)
	}
	if existing, ok := ctx.Value(tenantKey{}).(domain.TenantInfo); ok {
		return ctx, fmt.Errorf("%w: %s", ErrTenantAlreadySet, existing.Identifier)
	}
	return context.WithValue(ctx, tenantKey{}, *tenant), nil
}

// FromContext returns a copy of the tenant bound to ctx.
func FromContext(ctx context.Context) (*domain.TenantInfo, error) {
	tenant, ok := ctx.Value(tenantKey{}).(domain.TenantInfo)
	if !ok {
		return nil, ErrTenantNotSet
	}
	return &tenant, nil
}
