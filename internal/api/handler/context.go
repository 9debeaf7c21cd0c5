package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/odooqa/qa-system/internal/api/middleware"
	"github.com/odooqa/qa-system/internal/core/domain"
)

// actor rebuilds the caller from the claims the Auth middleware injected.
// It returns nil for anonymous requests.
func actor(c echo.Context) *domain.User {
	id, _ := c.Get(middleware.CtxUserID).(string)
	if id == "" {
		return nil
	}
	username, _ := c.Get(middleware.CtxUsername).(string)
	role, _ := c.Get(middleware.CtxRole).(string)
	return &domain.User{ID: id, Username: username, Role: role}
}

// requireActor is actor with a fast-fail 401 when the middleware did not run
// or the token carried no subject.
func requireActor(c echo.Context) (*domain.User, error) {
	u := actor(c)
	if u == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return u, nil
}
