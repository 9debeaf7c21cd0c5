package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/odooqa/qa-system/internal/core/domain"
)

// errorResponse is the envelope of every failed request: {"error": "..."}.
type errorResponse struct {
	Error string `json:"error"`
}

// statusRule maps a domain error to its status. An empty message means the
// error's own text is shown.
type statusRule struct {
	err  error
	code int
	msg  string
}

// First match wins.
var statusRules = []statusRule{
	{domain.ErrQuestionNotFound, http.StatusNotFound, "question not found"},
	{domain.ErrAnswerNotFound, http.StatusNotFound, "answer not found"},
	{domain.ErrUserNotFound, http.StatusNotFound, "user not found"},
	{domain.ErrUnauthenticated, http.StatusUnauthorized, "authentication required"},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
	{domain.ErrForbidden, http.StatusForbidden, "you can only delete your own questions"},
	{domain.ErrUserExists, http.StatusConflict, "user already exists"},
	{domain.ErrRateLimited, http.StatusTooManyRequests, ""},
	{domain.ErrInvalidQuestion, http.StatusUnprocessableEntity, ""},
	{domain.ErrEmptyAnswer, http.StatusUnprocessableEntity, ""},
	{domain.ErrInvalidVote, http.StatusUnprocessableEntity, ""},
}

// NewHTTPErrorHandler renders handler errors as the JSON envelope. Domain
// errors get their fixed status; anything unknown is logged with the request
// id and answered with a bare 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err)
		if code == http.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Msg("unhandled error")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprint(he.Message)
	}
	for _, r := range statusRules {
		if errors.Is(err, r.err) {
			if r.msg == "" {
				return r.code, r.err.Error()
			}
			return r.code, r.msg
		}
	}
	return http.StatusInternalServerError, "internal server error"
}
