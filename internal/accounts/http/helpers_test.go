package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	accountshttp "github.com/aussiebroadwan/accounts/internal/accounts/http"
	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/internal/accounts/store/drivers/memory"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type testEnv struct {
	router *accountshttp.Router
	server *httptest.Server
	client *accountsdk.Client
	users  *service.UserService
	tokens *service.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	signer, err := jwtx.NewHS256Signer(testSecret)
	require.NoError(t, err)
	verifier, err := jwtx.NewHS256Verifier(testSecret, jwtx.VerifyOptions{Issuer: "accounts-test"})
	require.NoError(t, err)

	st := memory.NewStore()
	tokens := &service.TokenService{Signer: signer, Verifier: verifier, Issuer: "accounts-test", TTL: time.Hour}
	users := &service.UserService{
		Store:            st,
		Hasher:           cryptox.NewBcryptHasher(4),
		Tokens:           tokens,
		AllowAdminSignup: true,
	}

	logger := slogx.Discard()
	router := accountshttp.NewRouter("test", st, logger)
	router.TokenService = tokens
	router.UserService = users
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testEnv{
		router: router,
		server: srv,
		client: accountsdk.NewClient(srv.URL),
		users:  users,
		tokens: tokens,
	}
}

// signup registers a user and returns it with a client holding its token.
func (e *testEnv) signup(t *testing.T, email string, admin bool) (*accountsdk.User, *accountsdk.Client) {
	t.Helper()
	ctx := context.Background()

	u, err := e.client.Register(ctx, accountsdk.RegisterRequest{
		Name:     "user " + email,
		Email:    email,
		Password: "pw-" + email,
		IsAdmin:  admin,
	})
	require.NoError(t, err)

	login, err := e.client.Login(ctx, email, "pw-"+email)
	require.NoError(t, err)

	return u, e.client.WithToken(login.Token)
}

// do sends a raw request through the router.
func (e *testEnv) do(method, path, authorization string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) accountsdk.ErrorResponse {
	t.Helper()

	var body accountsdk.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func requireAPIError(t *testing.T, err error, status int, code, message string) {
	t.Helper()

	var apiErr *accountsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode, apiErr.Error())
	require.Equal(t, code, apiErr.Code)
	if message != "" {
		require.Equal(t, message, apiErr.Message)
	}
}

var _ http.Handler = (*accountshttp.Router)(nil)
