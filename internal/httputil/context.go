package httputil

import (
	"context"
	"net/http"

	"storm/internal/domain/models"
)

type contextKey struct{}

// claimsKey holds the verified token claims of an authenticated request
var claimsKey contextKey

// WithClaims attaches verified claims to the request
func WithClaims(r *http.Request, claims *models.Claims) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), claimsKey, claims))
}

// GetClaims returns the request's verified claims; ok is false when the
// request is unauthenticated or auth is disabled
func GetClaims(r *http.Request) (*models.Claims, bool) {
	claims, ok := r.Context().Value(claimsKey).(*models.Claims)
	return claims, ok && claims != nil
}

// GetUserID returns the token subject, or "" without claims
func GetUserID(r *http.Request) string {
	if claims, ok := GetClaims(r); ok {
		return claims.GetUserID()
	}
	return ""
}
