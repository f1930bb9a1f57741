package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	accountshttp "github.com/aussiebroadwan/accounts/internal/accounts/http"
	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestIdentityResolutionFailures(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	u, client := env.signup(t, "a@x.com", false)

	expired := &service.TokenService{
		Signer: env.tokens.Signer,
		Issuer: "accounts-test",
		TTL:    time.Minute,
		Now:    func() time.Time { return time.Now().Add(-time.Hour) },
	}
	stale, err := expired.Issue(domain.User{ID: u.ID})
	require.NoError(t, err)

	other, err := jwtx.NewHS256Signer([]byte("ffffffffffffffffffffffffffffffff"))
	require.NoError(t, err)
	forged, err := (&service.TokenService{Signer: other, Issuer: "accounts-test"}).Issue(domain.User{ID: u.ID})
	require.NoError(t, err)

	ghost, err := env.tokens.Issue(domain.User{ID: "01J0NOBODY"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		status  int
		code    string
		message string
	}{
		{"missing header", "", http.StatusUnauthorized, accountsdk.ErrorCodeUnauthenticated, "missing authorization header"},
		{"scheme only", "Bearer", http.StatusForbidden, accountsdk.ErrorCodeInvalidToken, "invalid token"},
		{"garbage token", "Bearer garbage", http.StatusForbidden, accountsdk.ErrorCodeInvalidToken, "invalid token"},
		{"expired token", "Bearer " + stale.Token, http.StatusForbidden, accountsdk.ErrorCodeInvalidToken, "invalid token"},
		{"foreign secret", "Bearer " + forged.Token, http.StatusForbidden, accountsdk.ErrorCodeInvalidToken, "invalid token"},
		{"unknown subject", "Bearer " + ghost.Token, http.StatusUnauthorized, accountsdk.ErrorCodeUnauthenticated, "user not found"},
		{"any scheme word is accepted", "Token " + client.Token, http.StatusOK, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodGet, "/users/profile", tt.header, nil)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.code == "" {
				return
			}
			body := decodeError(t, rec)
			require.Equal(t, tt.code, body.Error)
			require.Equal(t, tt.message, body.Message)
		})
	}
}

func TestResolutionRunsBeforePolicy(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	// A bad token must fail resolution even where policy would also deny.
	rec := env.do(http.MethodGet, "/users", "Bearer garbage", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, accountsdk.ErrorCodeInvalidToken, decodeError(t, rec).Error)

	rec = env.do(http.MethodPatch, "/users/someone", "", map[string]string{"name": "x"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, accountsdk.ErrorCodeUnauthenticated, decodeError(t, rec).Error)
}

func TestPolicyWithoutIdentityIsServerError(t *testing.T) {
	t.Parallel()

	called := false
	h := accountshttp.RequireSelfOrAdmin("id")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/users/x", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.False(t, called)
}

func TestPolicyDecisions(t *testing.T) {
	t.Parallel()

	self := domain.User{ID: "01J0SELF"}
	admin := domain.User{ID: "01J0ADMIN", IsAdmin: true}

	tests := []struct {
		name     string
		policy   func(http.Handler) http.Handler
		identity domain.User
		target   string
		allowed  bool
	}{
		{"admin-only denies user", accountshttp.RequireAdmin, self, "", false},
		{"admin-only allows admin", accountshttp.RequireAdmin, admin, "", true},
		{"self allowed", accountshttp.RequireSelfOrAdmin("id"), self, self.ID, true},
		{"other denied", accountshttp.RequireSelfOrAdmin("id"), self, "01J0OTHER", false},
		{"admin on other allowed", accountshttp.RequireSelfOrAdmin("id"), admin, "01J0OTHER", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.Handle("GET /users/{id}", withIdentity(tt.identity, tt.policy(http.HandlerFunc(
				func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) },
			))))

			target := tt.target
			if target == "" {
				target = "any"
			}
			req := httptest.NewRequest(http.MethodGet, "/users/"+target, nil)
			req.Header.Set("Authorization", "Bearer stub")
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if tt.allowed {
				require.Equal(t, http.StatusOK, rec.Code)
				return
			}
			require.Equal(t, http.StatusForbidden, rec.Code)
			require.Equal(t, "missing admin permissions", decodeError(t, rec).Message)
		})
	}
}

// withIdentity resolves every request to u through the real middleware.
func withIdentity(u domain.User, next http.Handler) http.Handler {
	users := &fixedUsers{u: u}
	tokens := &service.TokenService{Verifier: acceptAll{sub: u.ID}}
	return accountshttp.ResolveIdentity(tokens, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := accountshttp.IdentityFromContext(r.Context())
		if !ok || got.ID != u.ID {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

type acceptAll struct{ sub string }

func (a acceptAll) Verify(string) (jwtx.Claims, error) {
	c := jwtx.Claims{}
	c.Subject = a.sub
	return c, nil
}

type fixedUsers struct {
	u domain.User
}

func (f *fixedUsers) GetUserByID(_ context.Context, id string) (domain.User, error) {
	return f.u, nil
}
func (f *fixedUsers) GetUserByEmail(context.Context, string) (domain.User, error) { return f.u, nil }
func (f *fixedUsers) ListUsers(context.Context) ([]domain.User, error)            { return nil, nil }
func (f *fixedUsers) CreateUser(context.Context, domain.User) error               { return nil }
func (f *fixedUsers) UpdateUser(context.Context, string, domain.UserPatch) (domain.User, error) {
	return f.u, nil
}
func (f *fixedUsers) DeleteUser(context.Context, string) error { return nil }
func (f *fixedUsers) IsEmpty(context.Context) (bool, error)    { return false, nil }
