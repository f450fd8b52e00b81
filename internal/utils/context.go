package utils

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

type ContextKey string

const (
	ClaimsKey ContextKey = "claims"
)

var (
	ErrNoClaimsInContext = errors.New("no claims found in context")
	ErrNoSubjectInClaims = errors.New("no sub found in claims")
)

// WithClaims stores verified token claims on the request context.
func WithClaims(ctx context.Context, claims jwt.MapClaims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

func ClaimsFromContext(ctx context.Context) (jwt.MapClaims, error) {
	claims, ok := ctx.Value(ClaimsKey).(jwt.MapClaims)
	if !ok {
		return nil, ErrNoClaimsInContext
	}
	return claims, nil
}

// UserIDFromContext returns the token subject.
func UserIDFromContext(ctx context.Context) (string, error) {
	claims, err := ClaimsFromContext(ctx)
	if err != nil {
		return "", err
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrNoSubjectInClaims
	}
	return sub, nil
}

// Roles returns the string entries of the roles claim.
func Roles(claims jwt.MapClaims) []string {
	raw, ok := claims["roles"].([]any)
	if !ok {
		return nil
	}
	roles := make([]string, 0, len(raw))
	for _, role := range raw {
		if s, ok := role.(string); ok {
			roles = append(roles, s)
		}
	}
	return roles
}
