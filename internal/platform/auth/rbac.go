package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RequireRole returns middleware that checks if the principal has at least
// one of the specified roles. Anonymous requests get 401.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if !p.HasAnyRole(roles...) {
				return echo.NewHTTPError(http.StatusForbidden,
					fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
			}
			return next(c)
		}
	}
}

// AuthorizeOwner admits the caller when it holds one of staffRoles or is
// the user named ownerUsername. Usernames are case-sensitive. Handlers use it for single-item reads where
// ownership depends on stored data.
func AuthorizeOwner(ctx context.Context, ownerUsername string, staffRoles ...string) error {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	if p.HasAnyRole(staffRoles...) {
		return nil
	}
	if ownerUsername != "" && p.Username() == ownerUsername {
		return nil
	}
	return ErrForbidden
}
