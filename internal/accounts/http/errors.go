package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

func writeServerError(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusInternalServerError, accountsdk.ErrorCodeServerError, "internal server error")
}

func writeBadBody(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusBadRequest, accountsdk.ErrorCodeInvalidRequest, "invalid JSON in request body")
}

// writeServiceError translates service errors into responses. Anything
// unrecognised is logged and hidden behind a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		msg := strings.TrimPrefix(err.Error(), service.ErrInvalidRequest.Error()+": ")
		httpx.WriteError(w, http.StatusBadRequest, accountsdk.ErrorCodeInvalidRequest, msg)
	case errors.Is(err, service.ErrEmailTaken):
		httpx.WriteError(w, http.StatusConflict, accountsdk.ErrorCodeEmailTaken, "email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, accountsdk.ErrorCodeInvalidCredentials, "invalid email or password")
	case errors.Is(err, service.ErrUserNotFound):
		httpx.WriteError(w, http.StatusNotFound, accountsdk.ErrorCodeNotFound, "user not found")
	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		writeServerError(w)
	}
}
