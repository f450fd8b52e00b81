package tenancy

import (
	"context"
	"fmt"
	"strings"

	"github.com/kingrain94/tenant-notify-api/internal/domain"
)

// Directory looks tenants up by their external identifier.
type Directory interface {
	GetByIdentifier(ctx context.Context, identifier string) (*domain.TenantInfo, error)
}

// Resolver runs an ordered strategy chain. The first strategy that yields a
// non-empty identifier wins; later strategies are not consulted.
type Resolver struct {
	directory  Directory
	strategies []Strategy
}

func NewResolver(directory Directory, strategies ...Strategy) *Resolver {
	return &Resolver{
		directory:  directory,
		strategies: strategies,
	}
}

// Identify returns the raw identifier without consulting the directory.
func (r *Resolver) Identify(src Source) (string, error) {
	names := make([]string, 0, len(r.strategies))
	for _, strategy := range r.strategies {
		if identifier := strings.TrimSpace(strategy.Identifier(src)); identifier != "" {
			return identifier, nil
		}
		names = append(names, strategy.Name())
	}
	return "", fmt.Errorf("%w: no identifier from [%s]", ErrTenantUnresolved, strings.Join(names, ", "))
}

func (r *Resolver) Resolve(ctx context.Context, src Source) (*domain.TenantInfo, error) {
	identifier, err := r.Identify(src)
	if err != nil {
		return nil, err
	}

	tenant, err := r.directory.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("resolve tenant %q: %w", identifier, err)
	}
	return tenant, nil
}

// Enter resolves the tenant for src and returns a fresh operation context
// carrying it. Every new logical operation (request, inbound message, queue
// message) goes through here exactly once.
func (r *Resolver) Enter(ctx context.Context, src Source) (context.Context, *domain.TenantInfo, error) {
	tenant, err := r.Resolve(ctx, src)
	if err != nil {
		return ctx, nil, err
	}

	opCtx, err := WithTenant(ctx, tenant)
	if err != nil {
		return ctx, nil, err
	}
	return opCtx, tenant, nil
}
