package tenancy

import "errors"

var (
	// Resolution failures. Callers surface these as authentication errors.
	ErrTenantUnresolved = errors.New("tenant could not be resolved")
	ErrTenantNotFound   = errors.New("tenant not found")

	// ErrTenantMismatch is returned when an operation touches data tagged for
	// a tenant other than the active one.
	ErrTenantMismatch = errors.New("tenant mismatch")

	// Invariant violations: tenant-scoped storage was used without a tenant,
	// or in a way that cannot be scoped.
	ErrTenantNotSet     = errors.New("tenant context not set")
	ErrTenantAlreadySet = errors.New("tenant context already set")
	ErrRawSQLNotScoped  = errors.New("raw sql cannot be tenant scoped")
	ErrUpsertNotScoped  = errors.New("upsert cannot be tenant scoped")
)

// IsResolutionFailure reports whether err means no usable tenant could be
// derived for the operation.
func IsResolutionFailure(err error) bool {
	return errors.Is(err, ErrTenantUnresolved) || errors.Is(err, ErrTenantNotFound)
}
