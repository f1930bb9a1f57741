package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"

	_ "github.com/aussiebroadwan/accounts/api/accounts" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

// RateLimits groups the limiter profiles applied per route. Zero values disable limiting.
type RateLimits struct {
	// Strict applies per client IP to the credential endpoints.
	Strict httpx.RateLimitConfig
	// Moderate applies per user to authenticated endpoints.
	Moderate httpx.RateLimitConfig
	// TrustProxyHeaders keys limits on X-Forwarded-For/X-Real-IP instead of
	// the peer address. Enable only behind a proxy that sets them.
	TrustProxyHeaders bool
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	TokenService *service.TokenService
	UserService  *service.UserService
	Limits       RateLimits
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAccounts()
	r.registerUsers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Accounts Service API
//	@version		0.1.0
//	@description	Account management: registration, login and self-or-admin user administration.
//	@description
//	@description				Session tokens are HS256 JWTs valid for 24 hours.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/accounts
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authenticated resolves the caller, rate limits per user, then applies policy.
func (r *Router) authenticated(h http.Handler, policy httpx.Middleware) http.Handler {
	return httpx.Chain(h,
		ResolveIdentity(r.TokenService, r.store.Users()),
		httpx.RateLimitByUser(r.Limits.Moderate, r.Limits.TrustProxyHeaders),
		policy,
	)
}

func (r *Router) registerAccounts() {
	users := &UsersHandler{UserService: r.UserService}
	login := &LoginHandler{UserService: r.UserService}

	// Credential endpoints - strict rate limit by IP (brute force and sign-up spam)
	r.Mux.Handle("POST /users",
		httpx.Chain(http.HandlerFunc(users.HandleRegister),
			httpx.RateLimitByIP(r.Limits.Strict, r.Limits.TrustProxyHeaders),
		),
	)
	r.Mux.Handle("POST /login",
		httpx.Chain(login,
			httpx.RateLimitByIP(r.Limits.Strict, r.Limits.TrustProxyHeaders),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	r.Mux.Handle("GET /users", r.authenticated(http.HandlerFunc(h.HandleList), RequireAdmin))
	r.Mux.Handle("GET /users/profile", r.authenticated(http.HandlerFunc(h.HandleProfile), nil))
	r.Mux.Handle("PATCH /users/{id}", r.authenticated(http.HandlerFunc(h.HandleUpdate), RequireSelfOrAdmin("id")))
	r.Mux.Handle("DELETE /users/{id}", r.authenticated(http.HandlerFunc(h.HandleDelete), RequireSelfOrAdmin("id")))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.TokenService))
}
