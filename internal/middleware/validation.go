package middleware

import (
	"net/http"
	"regexp"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kingrain94/tenant-notify-api/pkg/logger"
)

var tenantIdentifierPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// ValidTenantIdentifier reports whether s has the shape of a tenant
// identifier. It does not check that the tenant exists.
func ValidTenantIdentifier(s string) bool {
	return tenantIdentifierPattern.MatchString(s)
}

type ValidationMiddleware struct {
	logger *logger.Logger
}

func NewValidationMiddleware(logger *logger.Logger) *ValidationMiddleware {
	return &ValidationMiddleware{
		logger: logger,
	}
}

// ValidateContentType ensures only allowed content types
func (m *ValidationMiddleware) ValidateContentType(allowedTypes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodDelete {
			c.Next()
			return
		}
		if c.Request.ContentLength == 0 {
			c.Next()
			return
		}

		contentType := strings.TrimSpace(strings.Split(c.GetHeader("Content-Type"), ";")[0])
		if contentType == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Content-Type header is required"})
			return
		}

		if !slices.Contains(allowedTypes, contentType) {
			c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
				"error":         "Unsupported Content-Type",
				"allowed_types": allowedTypes,
			})
			return
		}

		c.Next()
	}
}

// ValidateRequestSize limits request body size
func (m *ValidationMiddleware) ValidateRequestSize(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":         "Request body too large",
				"max_size":      maxSize,
				"received_size": c.Request.ContentLength,
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// ValidateTenantIdentifier rejects malformed tenant identifiers supplied in
// the given header or query parameter before any lookup happens.
func (m *ValidationMiddleware) ValidateTenantIdentifier(header, queryKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for source, value := range map[string]string{
			"header": c.GetHeader(header),
			"query":  c.Query(queryKey),
		} {
			if value == "" || ValidTenantIdentifier(value) {
				continue
			}
			m.logger.Warn("Rejected malformed tenant identifier",
				zap.String("source", source),
				zap.String("ip", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid tenant identifier"})
			return
		}

		c.Next()
	}
}
