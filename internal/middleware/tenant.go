package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/kingrain94/tenant-notify-api/internal/metrics"
	"github.com/kingrain94/tenant-notify-api/internal/tenancy"
	"github.com/kingrain94/tenant-notify-api/internal/utils"
	"github.com/kingrain94/tenant-notify-api/pkg/logger"
)

// TenantKey holds the active tenant identifier in the gin context, for
// logging only. Code that touches data reads the request context.
const TenantKey = "tenant"

// requestSource exposes a gin request to the tenant resolver.
type requestSource struct {
	c      *gin.Context
	claims jwt.MapClaims
}

func NewRequestSource(c *gin.Context) tenancy.Source {
	claims, _ := utils.ClaimsFromContext(c.Request.Context())
	return requestSource{c: c, claims: claims}
}

func (s requestSource) Claim(name string) string {
	return tenancy.Claims(s.claims).Claim(name)
}

func (s requestSource) Header(name string) string     { return s.c.GetHeader(name) }
func (s requestSource) RouteParam(name string) string { return s.c.Param(name) }
func (s requestSource) Query(name string) string      { return s.c.Query(name) }
func (s requestSource) Item(string) string            { return "" }

type TenantMiddleware struct {
	resolver *tenancy.Resolver
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewTenantMiddleware(resolver *tenancy.Resolver, logger *logger.Logger, m *metrics.Metrics) *TenantMiddleware {
	return &TenantMiddleware{
		resolver: resolver,
		logger:   logger,
		metrics:  m,
	}
}

// TenantContext resolves the tenant once per request and binds it to the
// request context for the rest of the chain.
func (m *TenantMiddleware) TenantContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, tenant, err := m.resolver.Enter(c.Request.Context(), NewRequestSource(c))
		if err != nil {
			m.reject(c, err)
			return
		}

		c.Set(TenantKey, tenant.Identifier)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (m *TenantMiddleware) reject(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tenancy.ErrTenantUnresolved):
		m.metrics.RecordResolutionFailure("http", "unresolved")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Tenant could not be resolved"})
	case errors.Is(err, tenancy.ErrTenantNotFound):
		m.metrics.RecordResolutionFailure("http", "not_found")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unknown tenant"})
	default:
		m.metrics.RecordResolutionFailure("http", "error")
		m.logger.Error("Tenant resolution failed", err, zap.String("path", c.FullPath()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Tenant resolution failed"})
	}
}
