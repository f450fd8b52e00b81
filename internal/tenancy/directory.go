package tenancy

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/kingrain94/tenant-notify-api/internal/domain"
)

const defaultCacheSize = 1024

// CachedDirectory keeps recent lookups for at most ttl. Unknown identifiers
// are never cached, so a newly seeded tenant is visible on the next lookup.
type CachedDirectory struct {
	next  Directory
	cache *expirable.LRU[string, domain.TenantInfo]
	group singleflight.Group
}

// NewCachedDirectory wraps next with a TTL cache. A non-positive ttl disables
// caching and returns next unchanged.
func NewCachedDirectory(next Directory, size int, ttl time.Duration) Directory {
	if ttl <= 0 {
		return next
	}
	if size <= 0 {
		size = defaultCacheSize
	}
	return &CachedDirectory{
		next:  next,
		cache: expirable.NewLRU[string, domain.TenantInfo](size, nil, ttl),
	}
}

func (d *CachedDirectory) GetByIdentifier(ctx context.Context, identifier string) (*domain.TenantInfo, error) {
	if tenant, ok := d.cache.Get(identifier); ok {
		return &tenant, nil
	}

	// Callers share the load, so one caller giving up must not fail the rest.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := d.group.Do(identifier, func() (any, error) {
		tenant, err := d.next.GetByIdentifier(loadCtx, identifier)
		if err != nil {
			return nil, err
		}
		d.cache.Add(identifier, *tenant)
		return *tenant, nil
	})
	if err != nil {
		return nil, err
	}

	tenant := v.(domain.TenantInfo)
	return &tenant, nil
}

// Invalidate drops a cached entry after an administrative change.
func (d *CachedDirectory) Invalidate(identifier string) {
	d.cache.Remove(identifier)
}
