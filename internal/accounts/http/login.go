package http

import (
	"net/http"

	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
)

type LoginHandler struct {
	UserService *service.UserService
}

// ServeHTTP handles POST /login
//
//	@Summary		Log in
//	@Description	Exchanges email and password for a session token valid for 24 hours.
//	@Description	Wrong email and wrong password produce the same response.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.LoginRequest		true	"Credentials"
//	@Success		200		{object}	accountsdk.LoginResponse	"Session token"
//	@Failure		400		{object}	accountsdk.ErrorResponse	"Invalid request body"
//	@Failure		401		{object}	accountsdk.ErrorResponse	"Invalid email or password"
//	@Failure		429		{object}	accountsdk.ErrorResponse	"Rate limited"
//	@Router			/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		writeBadBody(w)
		return
	}

	issued, err := h.UserService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, accountsdk.LoginResponse{
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt,
	})
}
