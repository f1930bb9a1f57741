package http

import (
	"net/http"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

// UsersHandler handles account registration and administration endpoints.
type UsersHandler struct {
	UserService *service.UserService
}

// toPublic is the only way a user leaves the service.
func toPublic(u domain.User) accountsdk.User {
	return accountsdk.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// HandleRegister handles POST /users
//
//	@Summary		Register a user
//	@Description	Creates an account. Emails are unique and compared case-sensitively.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.RegisterRequest	true	"Registration request"
//	@Success		201		{object}	accountsdk.User				"The created user"
//	@Failure		400		{object}	accountsdk.ErrorResponse	"Invalid request body"
//	@Failure		409		{object}	accountsdk.ErrorResponse	"Email already registered"
//	@Failure		429		{object}	accountsdk.ErrorResponse	"Rate limited"
//	@Router			/users [post].
func (h *UsersHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		writeBadBody(w)
		return
	}

	user, err := h.UserService.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toPublic(user))
}

// HandleList handles GET /users
//
//	@Summary		List users
//	@Description	Returns every account in registration order. Requires an admin token.
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		accountsdk.User				"All users"
//	@Failure		401	{object}	accountsdk.ErrorResponse	"Missing authorization header or user not found"
//	@Failure		403	{object}	accountsdk.ErrorResponse	"Invalid token or not an admin"
//	@Failure		500	{object}	accountsdk.ErrorResponse	"Internal server error"
//	@Router			/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]accountsdk.User, len(users))
	for i, u := range users {
		out[i] = toPublic(u)
	}

	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleProfile handles GET /users/profile
//
//	@Summary		Current user
//	@Description	Returns the account the bearer token belongs to.
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	accountsdk.User				"The caller"
//	@Failure		401	{object}	accountsdk.ErrorResponse	"Missing authorization header or user not found"
//	@Failure		403	{object}	accountsdk.ErrorResponse	"Invalid token"
//	@Router			/users/profile [get].
func (h *UsersHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := IdentityFromContext(r.Context())
	if !ok {
		slogx.FromContext(r.Context()).Error("profile requested without resolved identity")
		writeServerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toPublic(user))
}

// HandleUpdate handles PATCH /users/{id}
//
//	@Summary		Update a user
//	@Description	Changes name, email or password. Allowed for the account owner and admins. The id never changes.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string						true	"User ID"
//	@Param			request	body		accountsdk.UpdateRequest	true	"Fields to change"
//	@Success		200		{object}	accountsdk.User				"The updated user"
//	@Failure		400		{object}	accountsdk.ErrorResponse	"Invalid request body"
//	@Failure		401		{object}	accountsdk.ErrorResponse	"Missing authorization header or user not found"
//	@Failure		403		{object}	accountsdk.ErrorResponse	"Invalid token or not self/admin"
//	@Failure		404		{object}	accountsdk.ErrorResponse	"User not found"
//	@Failure		409		{object}	accountsdk.ErrorResponse	"Email already registered"
//	@Router			/users/{id} [patch].
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.UpdateRequest
	if err := httpx.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		writeBadBody(w)
		return
	}

	user, err := h.UserService.Update(r.Context(), r.PathValue("id"), service.UpdateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toPublic(user))
}

// HandleDelete handles DELETE /users/{id}
//
//	@Summary		Delete a user
//	@Description	Removes the account permanently. Allowed for the account owner and admins.
//	@Tags			Users
//	@Security		BearerAuth
//	@Param			id	path	string	true	"User ID"
//	@Success		204	"Deleted"
//	@Failure		401	{object}	accountsdk.ErrorResponse	"Missing authorization header or user not found"
//	@Failure		403	{object}	accountsdk.ErrorResponse	"Invalid token or not self/admin"
//	@Failure		404	{object}	accountsdk.ErrorResponse	"User not found"
//	@Router			/users/{id} [delete].
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.UserService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
