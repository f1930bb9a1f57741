package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

type identityKey struct{}

// IdentityFromContext returns the caller resolved by ResolveIdentity.
func IdentityFromContext(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(identityKey{}).(domain.User)
	return u, ok
}

func withIdentity(ctx context.Context, u domain.User) context.Context {
	return context.WithValue(ctx, identityKey{}, u)
}

// ResolveIdentity verifies the bearer token and loads its subject from the
// directory. The loaded record is the only identity later stages consult.
func ResolveIdentity(tokens *service.TokenService, users store.Users) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			header := r.Header.Get("Authorization")
			if header == "" {
				httpx.WriteError(w, http.StatusUnauthorized, accountsdk.ErrorCodeUnauthenticated, "missing authorization header")
				return
			}

			userID, err := tokens.Verify(httpx.BearerToken(header))
			if err != nil {
				log.Info("rejected bearer token", "err", err)
				httpx.WriteError(w, http.StatusForbidden, accountsdk.ErrorCodeInvalidToken, "invalid token")
				return
			}

			user, err := users.GetUserByID(ctx, userID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					log.Info("token subject no longer exists", "user_id", userID)
					httpx.WriteError(w, http.StatusUnauthorized, accountsdk.ErrorCodeUnauthenticated, "user not found")
					return
				}
				log.Error("failed to resolve token subject", "user_id", userID, "err", err)
				writeServerError(w)
				return
			}

			ctx = withIdentity(ctx, user)
			ctx = httpx.WithUserID(ctx, user.ID)
			ctx = slogx.WithUserID(ctx, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin allows only admin callers.
func RequireAdmin(next http.Handler) http.Handler {
	return requireIdentity(next, func(u domain.User, _ *http.Request) bool {
		return u.IsAdmin
	})
}

// RequireSelfOrAdmin allows admins, and callers whose ID equals the path value param.
func RequireSelfOrAdmin(param string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return requireIdentity(next, func(u domain.User, r *http.Request) bool {
			return u.IsAdmin || u.ID == r.PathValue(param)
		})
	}
}

func requireIdentity(next http.Handler, allow func(domain.User, *http.Request) bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := IdentityFromContext(r.Context())
		if !ok {
			slogx.FromContext(r.Context()).Error("policy check without resolved identity")
			writeServerError(w)
			return
		}

		if !allow(u, r) {
			httpx.WriteError(w, http.StatusForbidden, accountsdk.ErrorCodeForbidden, "missing admin permissions")
			return
		}

		next.ServeHTTP(w, r)
	})
}
