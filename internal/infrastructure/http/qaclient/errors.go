package qaclient

import (
	"fmt"
	"net/http"

	"github.com/odooqa/qa-system/internal/core/domain"
)

// APIError is a non-2xx answer from the domain service. It unwraps to the
// domain error the status code stands for.
type APIError struct {
	Status  int
	Message string
	kinds   []error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("qa service: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("qa service: %d %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() []error {
	return e.kinds
}

// statusError maps a status code onto the taxonomy. notFound names what a
// 404 means for the endpoint that was called.
func statusError(status int, msg string, notFound error) *APIError {
	e := &APIError{Status: status, Message: msg}
	switch {
	case status == http.StatusUnauthorized:
		e.kinds = []error{domain.ErrUnauthenticated}
	case status == http.StatusForbidden:
		e.kinds = []error{domain.ErrForbidden}
	case status == http.StatusNotFound:
		if notFound == nil {
			notFound = domain.ErrTransient
		}
		e.kinds = []error{notFound}
	case status == http.StatusConflict:
		e.kinds = []error{domain.ErrUserExists}
	case status == http.StatusTooManyRequests:
		e.kinds = []error{domain.ErrTransient, domain.ErrRateLimited}
	default:
		e.kinds = []error{domain.ErrTransient}
	}
	return e
}
