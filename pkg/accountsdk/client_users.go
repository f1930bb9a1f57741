package accountsdk

import (
	"context"
	"net/http"
	"net/url"
)

// Register creates a new account. No authentication is required.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/users", req, false)
	if err != nil {
		return nil, err
	}

	var user User
	if err := decodeJSON(resp, &user, http.StatusCreated); err != nil {
		return nil, err
	}

	return &user, nil
}

// Login exchanges an email and password for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/login", LoginRequest{Email: email, Password: password}, false)
	if err != nil {
		return nil, err
	}

	var login LoginResponse
	if err := decodeJSON(resp, &login, http.StatusOK); err != nil {
		return nil, err
	}

	return &login, nil
}

// Profile returns the account the token belongs to.
func (c *Client) Profile(ctx context.Context) (*User, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/users/profile", nil, true)
	if err != nil {
		return nil, err
	}

	var user User
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}

	return &user, nil
}

// ListUsers returns every account. Requires an admin token.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/users", nil, true)
	if err != nil {
		return nil, err
	}

	var users []User
	if err := decodeJSON(resp, &users, http.StatusOK); err != nil {
		return nil, err
	}

	return users, nil
}

// UpdateUser patches the account with the given id. Requires the owner's or an admin's token.
func (c *Client) UpdateUser(ctx context.Context, id string, req UpdateRequest) (*User, error) {
	resp, err := c.doRequest(ctx, http.MethodPatch, "/users/"+url.PathEscape(id), req, true)
	if err != nil {
		return nil, err
	}

	var user User
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}

	return &user, nil
}

// DeleteUser removes the account with the given id. Requires the owner's or an admin's token.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, true)
	if err != nil {
		return err
	}

	return checkStatusNoContent(resp)
}
