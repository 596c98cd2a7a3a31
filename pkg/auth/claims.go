// Package auth provides bearer-token authentication for lakegate-engine.
// The engine receives an already-authenticated principal identity from the
// token; it performs no credential checking of its own.
package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ClaimsKey is the context key for storing token claims.
	ClaimsKey contextKey = "claims"
)

// Claims represents the bearer token claims. It embeds RegisteredClaims for
// standard JWT fields (sub, exp, ...) and adds the display name and staff
// flag the engine consumes.
type Claims struct {
	jwt.RegisteredClaims
	Name  string `json:"name,omitempty"`
	Staff bool   `json:"staff,omitempty"`
}

// GetClaims retrieves token claims from the request context.
// Returns nil and false if claims are not present.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}

// GetPrincipal extracts the principal identity (token subject) from the
// context. Returns empty string if not authenticated.
func GetPrincipal(ctx context.Context) string {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return ""
	}
	return claims.Subject
}

// IsStaff reports whether the authenticated principal carries the staff
// flag.
func IsStaff(ctx context.Context) bool {
	claims, ok := GetClaims(ctx)
	return ok && claims != nil && claims.Staff
}
