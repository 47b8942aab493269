package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/apparel/internal/common"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var errorStatus = []struct {
	err    error
	status int
	code   string
}{
	{common.ErrDuplicateUser, http.StatusConflict, "duplicate_user"},
	{common.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{common.ErrSessionExpired, http.StatusUnauthorized, "session_expired"},
	{common.ErrInvalidToken, http.StatusUnauthorized, "invalid_token"},
	{common.ErrForbidden, http.StatusForbidden, "forbidden"},
	{common.ErrorNotFound, http.StatusNotFound, "not_found"},
	{common.ErrUnknownField, http.StatusBadRequest, "unknown_field"},
	{common.ErrValidation, http.StatusBadRequest, "invalid_request"},
	{common.ErrPersistenceUnavailable, http.StatusServiceUnavailable, "persistence_unavailable"},
}

// statusFor maps err to an HTTP status and a stable body code.
func statusFor(err error) (int, string) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status, e.code
		}
	}
	return http.StatusInternalServerError, "internal"
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		msg = common.ErrorInternal.Error()
	}
	writeJSON(w, status, ErrorBody{Error: code, Message: msg})
}
