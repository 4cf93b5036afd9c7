package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RequireRole returns middleware that rejects requests whose authenticated
// role is not one of the given roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			have := RoleFromContext(c.Request().Context())
			for _, required := range roles {
				if have == required {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}

// RequireEnterprise returns middleware that restricts a route group to users
// belonging to one side of the clinic/pharmacy pair.
func RequireEnterprise(enterprise string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if EnterpriseFromContext(c.Request().Context()) != enterprise {
				return echo.NewHTTPError(http.StatusForbidden,
					fmt.Sprintf("required enterprise: %s", enterprise))
			}
			return next(c)
		}
	}
}
