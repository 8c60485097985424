package middleware

import (
	"context"

	"github.com/google/uuid"

	pkgauth "github.com/agriconecta/backend/pkg/auth"
	"github.com/agriconecta/backend/pkg/enums"
)

type contextKey string

const ctxClaims contextKey = "auth_claims"

// WithClaims injects the verified token claims into the context.
func WithClaims(ctx context.Context, claims *pkgauth.AccessTokenClaims) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxClaims, claims)
}

// ClaimsFromContext returns the verified claims, or nil outside an
// authenticated route.
func ClaimsFromContext(ctx context.Context) *pkgauth.AccessTokenClaims {
	if ctx == nil {
		return nil
	}
	if claims, ok := ctx.Value(ctxClaims).(*pkgauth.AccessTokenClaims); ok {
		return claims
	}
	return nil
}

// UserIDFromContext returns the authenticated user id.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	claims := ClaimsFromContext(ctx)
	if claims == nil || claims.UserID == uuid.Nil {
		return uuid.Nil, false
	}
	return claims.UserID, true
}

// RolesFromContext returns the caller's role set. Empty outside an
// authenticated route.
func RolesFromContext(ctx context.Context) enums.RolSet {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return enums.NewRolSet()
	}
	return claims.RolSet()
}

// AccessIDFromContext returns the token's session id (jti).
func AccessIDFromContext(ctx context.Context) string {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return ""
	}
	return claims.ID
}
