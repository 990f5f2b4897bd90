// Package auth provides the bearer-token middleware shared by services that
// protect endpoints. The token itself is stateless, so the middleware
// re-checks the account's active flag on every request through AccountGate.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/medrec/medrec/internal/platform/token"
)

type contextKey string

const subjectIDKey contextKey = "subject_id"

// AccountGate answers whether a subject's account is currently active.
// ErrUnknownSubject-style lookups should return an error; an inactive account
// returns (false, nil).
type AccountGate interface {
	IsActive(ctx context.Context, subjectID int64) (bool, error)
}

// SubjectIDFromContext returns the authenticated subject id, or 0 when the
// request was not authenticated.
func SubjectIDFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(subjectIDKey).(int64)
	return id
}

// Middleware verifies the Authorization bearer token and confirms the
// account is still active. Every verification defect maps to the same 401
// body; a deactivated account maps to 403.
func Middleware(verifier *token.Issuer, gate AccountGate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
			}

			subjectID, err := verifier.Verify(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
			}

			active, err := gate.IsActive(c.Request().Context(), subjectID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
			}
			if !active {
				return echo.NewHTTPError(http.StatusForbidden, "User account is deactivated")
			}

			ctx := context.WithValue(c.Request().Context(), subjectIDKey, subjectID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
