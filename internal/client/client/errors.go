package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/apparel/internal/common"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.Status, e.Code)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

var codeErrors = map[string]error{
	"duplicate_user":          common.ErrDuplicateUser,
	"invalid_credentials":     common.ErrInvalidCredentials,
	"session_expired":         common.ErrSessionExpired,
	"invalid_token":           common.ErrInvalidToken,
	"forbidden":               common.ErrForbidden,
	"not_found":               common.ErrorNotFound,
	"unknown_field":           common.ErrUnknownField,
	"invalid_request":         common.ErrValidation,
	"persistence_unavailable": common.ErrPersistenceUnavailable,
	"internal":                common.ErrorInternal,
}

func (e *APIError) Unwrap() []error {
	var errs []error
	if s, ok := codeErrors[e.Code]; ok {
		errs = append(errs, s)
	}
	if e.Status == http.StatusUnauthorized {
		errs = append(errs, ErrUnauthorized)
	}
	if e.Status == http.StatusServiceUnavailable {
		errs = append(errs, ErrUnavailable)
	}
	return errs
}
