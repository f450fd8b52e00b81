package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/kingrain94/tenant-notify-api/internal/config"
	"github.com/kingrain94/tenant-notify-api/internal/domain"
	"github.com/kingrain94/tenant-notify-api/internal/utils"
)

// AccessTokenQueryParam carries the bearer token on websocket upgrades,
// where browsers cannot set the Authorization header.
const AccessTokenQueryParam = "access_token"

var (
	ErrMissingToken   = errors.New("authorization header is required")
	ErrMalformedToken = errors.New("invalid authorization header format")
	ErrInvalidToken   = errors.New("invalid or expired token")
)

type AuthMiddleware struct {
	config *config.Config
	parser *jwt.Parser
}

func NewAuthMiddleware(config *config.Config) *AuthMiddleware {
	return &AuthMiddleware{
		config: config,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(config.JWTIssuer),
			jwt.WithAudience(config.JWTAudience),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(0),
		),
	}
}

// Verify checks signature, expiry, issuer and audience, and requires a
// subject.
func (m *AuthMiddleware) Verify(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, err := m.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(m.config.JWTSecretKey), nil
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if sub, err := claims.GetSubject(); err != nil || sub == "" {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, utils.ErrNoSubjectInClaims)
	}
	return claims, nil
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", ErrMalformedToken
	}
	return parts[1], nil
}

// TokenFromUpgrade reads the token from the Authorization header, falling
// back to the access_token query parameter.
func TokenFromUpgrade(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		return bearerToken(header)
	}
	if token := r.URL.Query().Get(AccessTokenQueryParam); token != "" {
		return token, nil
	}
	return "", ErrMissingToken
}

func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		claims, err := m.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrInvalidToken.Error()})
			return
		}

		c.Set(string(utils.ClaimsKey), claims)
		c.Request = c.Request.WithContext(utils.WithClaims(c.Request.Context(), claims))
		c.Next()
	}
}

// RequireRole middleware checks if the user has the required role
func (m *AuthMiddleware) RequireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := utils.ClaimsFromContext(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No authentication found"})
			return
		}

		if !domain.HasRole(utils.Roles(claims), role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}

		c.Next()
	}
}

func (m *AuthMiddleware) GenerateToken(userID, tenantIdentifier string, roles []string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":                 userID,
		"iss":                 m.config.JWTIssuer,
		"aud":                 m.config.JWTAudience,
		m.config.Tenant.Claim: tenantIdentifier,
		"roles":               roles,
		"exp":                 now.Add(time.Duration(m.config.JWTExpirationHours) * time.Hour).Unix(),
		"iat":                 now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.config.JWTSecretKey))
}
