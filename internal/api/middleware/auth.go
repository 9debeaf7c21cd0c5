package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys set from verified claims.
const (
	CtxUserID   = "user_id"
	CtxUsername = "username"
	CtxRole     = "role"
)

var errNoHeader = errors.New("missing authorization header")

// Auth validates the JWT and injects claims into context.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := bearerClaims(c.Request().Header.Get("Authorization"), jwtSecret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}
			setClaims(c, claims)
			return next(c)
		}
	}
}

// AuthOptional lets requests without an Authorization header through
// anonymously. A header that is present must still carry a valid token.
func AuthOptional(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := bearerClaims(c.Request().Header.Get("Authorization"), jwtSecret)
			switch {
			case errors.Is(err, errNoHeader):
			case err != nil:
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			default:
				setClaims(c, claims)
			}
			return next(c)
		}
	}
}

func bearerClaims(authHeader, jwtSecret string) (jwt.MapClaims, error) {
	if authHeader == "" {
		return nil, errNoHeader
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, errors.New("invalid authorization header")
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	if sub, _ := claims["sub"].(string); sub == "" {
		return nil, errors.New("token missing subject")
	}
	return claims, nil
}

func setClaims(c echo.Context, claims jwt.MapClaims) {
	c.Set(CtxUserID, claims["sub"])
	c.Set(CtxUsername, claims["username"])
	c.Set(CtxRole, claims["role"])
}
