/*
Package accountsdk provides a client SDK for the accounts service.

# Overview

A Client talks to the service over HTTP. Public operations (registration,
login, health) need no credentials; the remaining operations send the
bearer token held by the Client.

	client := accountsdk.NewClient("http://localhost:8080")

	user, err := client.Register(ctx, accountsdk.RegisterRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "correct horse",
	})

	login, err := client.Login(ctx, "ada@example.com", "correct horse")
	authed := client.WithToken(login.Token)

	profile, err := authed.Profile(ctx)

# Errors

Non-2xx responses are returned as *APIError carrying the HTTP status and the
service error code:

	_, err := authed.ListUsers(ctx)
	var apiErr *accountsdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == accountsdk.ErrorCodeForbidden {
		// caller is not an admin
	}

IsStatus is a shortcut for matching on the status code alone.
*/
package accountsdk
