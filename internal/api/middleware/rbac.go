package middleware

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
)

// RBAC lets the request through only when the role Auth stamped on the
// context is one of allowed. It must run after Auth.
func RBAC(allowed ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if role == "" || !slices.Contains(allowed, role) {
				return echo.NewHTTPError(http.StatusForbidden, "your account may not "+verb(c.Request().Method)+" here")
			}
			return next(c)
		}
	}
}

func verb(method string) string {
	switch method {
	case http.MethodDelete:
		return "delete"
	case http.MethodPost:
		return "post"
	default:
		return "do that"
	}
}
