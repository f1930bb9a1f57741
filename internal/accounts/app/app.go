package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/accounts/internal/accounts/http"
	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/internal/accounts/store/drivers/memory"
	"github.com/aussiebroadwan/accounts/internal/accounts/store/drivers/sqlite"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the accounts service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db     store.Store
	hasher cryptox.PasswordHasher
	secret []byte

	// Services
	tokenService *service.TokenService
	userService  *service.UserService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	logger := NewLogger(cfg)
	slog.SetDefault(logger)
	return NewWithLogger(cfg, logger)
}

// NewLogger builds the service logger from cfg.
func NewLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "accounts-service",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// Migrate opens the configured store, applies pending migrations and
// closes it again.
func Migrate(cfg Config, logger *slog.Logger) error {
	app := &Application{cfg: cfg, logger: logger}
	if err := app.initStore(); err != nil {
		return err
	}
	return app.db.Close()
}

// NewWithLogger is New with a caller-supplied logger.
func NewWithLogger(cfg Config, logger *slog.Logger) (*Application, error) {
	app := &Application{cfg: cfg, logger: logger}

	if err := app.initStore(); err != nil {
		return nil, err
	}

	if err := app.initCrypto(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.seedAdmin(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Handler returns the HTTP handler serving every route.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("accounts service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down accounts service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("accounts service stopped")
	return nil
}

// initStore opens the configured user directory and applies migrations
func (app *Application) initStore() error {
	switch app.cfg.Store {
	case "", "memory":
		app.db = memory.NewStore()
		app.logger.Warn("using in-memory user directory - users will not survive restarts")

	case "sqlite":
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
		db, err := sqlite.NewStore(dsn)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		app.db = db

	default:
		return fmt.Errorf("unknown AUTH_STORE %q (want memory or sqlite)", app.cfg.Store)
	}

	if err := app.db.ApplyMigrations(); err != nil {
		_ = app.db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("user directory ready", "driver", app.cfg.Store)
	return nil
}

// initCrypto loads the pepper, password hasher and token secret
func (app *Application) initCrypto() error {
	var pepper string
	if app.cfg.PepperFile != "" {
		p, generated, err := cryptox.LoadOrCreateSecret(app.cfg.PepperFile, cryptox.TokenSize256)
		if err != nil {
			return fmt.Errorf("failed to load pepper: %w", err)
		}
		if generated {
			app.logger.Warn("generated new password pepper", "path", app.cfg.PepperFile)
		}
		pepper = p
	}

	hasher, err := cryptox.NewPasswordHasher(app.cfg.PasswordHasher, pepper, app.cfg.BcryptCost)
	if err != nil {
		return err
	}
	app.hasher = hasher

	secret, err := InitTokenSecret(app.cfg, app.logger)
	if err != nil {
		return err
	}
	app.secret = secret

	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	signer, err := jwtx.NewHS256Signer(app.secret)
	if err != nil {
		return fmt.Errorf("invalid token secret: %w", err)
	}
	verifier, err := jwtx.NewHS256Verifier(app.secret, jwtx.VerifyOptions{Issuer: app.cfg.Issuer})
	if err != nil {
		return fmt.Errorf("invalid token secret: %w", err)
	}

	app.tokenService = &service.TokenService{
		Signer:   signer,
		Verifier: verifier,
		Issuer:   app.cfg.Issuer,
		TTL:      app.cfg.TokenTTL,
	}

	app.userService = &service.UserService{
		Store:            app.db,
		Hasher:           app.hasher,
		Tokens:           app.tokenService,
		AllowAdminSignup: app.cfg.AllowAdminSignup,
	}

	return nil
}

// seedAdmin creates the configured admin when the directory is empty
func (app *Application) seedAdmin(ctx context.Context) error {
	if app.cfg.AdminEmail == "" || app.cfg.AdminPassword == "" {
		return nil
	}

	created, err := app.userService.EnsureAdmin(ctx, app.cfg.AdminEmail, app.cfg.AdminPassword, app.cfg.AdminName)
	if err != nil {
		return err
	}
	if created {
		app.logger.Info("seeded admin user", "email", app.cfg.AdminEmail)
	}
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)

	router.TokenService = app.tokenService
	router.UserService = app.userService
	router.Limits = httpapi.RateLimits{
		Strict:   app.cfg.StrictLimit,
		Moderate: app.cfg.ModerateLimit,

		TrustProxyHeaders: app.cfg.TrustProxy,
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
