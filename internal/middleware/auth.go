// Package middleware holds the cross-cutting request checks: the Bearer
// authentication gate and the per-plan daily quota.
package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rankwise/rankwise-api/internal/apperr"
	"github.com/rankwise/rankwise-api/internal/token"
)

// claimsKey is the context key the gate stores verified claims under.
const claimsKey = "auth_claims"

// RequireAuth verifies the Bearer access token and stashes its claims in
// the request context. Missing, malformed, expired or cross-class tokens
// all short-circuit with the same 401.
func RequireAuth(tokens *token.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return apperr.Unauthorized()
			}
			claims, err := tokens.VerifyAccess(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				return apperr.Unauthorized()
			}
			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// ClaimsFrom returns the verified claims attached by RequireAuth, or nil
// on unauthenticated routes.
func ClaimsFrom(c echo.Context) *token.Claims {
	claims, _ := c.Get(claimsKey).(*token.Claims)
	return claims
}
