package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aussiebroadwan/accounts/pkg/cryptox"
)

// ErrSecretRequired is returned in prod when no signing secret was provided.
var ErrSecretRequired = errors.New("app: AUTH_TOKEN_SECRET or an existing AUTH_TOKEN_SECRET_FILE is required in prod")

// InitTokenSecret resolves the process-wide token signing secret.
//
// Sources, in order:
//   - AUTH_TOKEN_SECRET: used as is.
//   - AUTH_TOKEN_SECRET_FILE: read, or generated and persisted on first run.
//     Tokens survive restarts.
//   - neither: a random secret held in memory only. Every restart
//     invalidates all issued tokens.
//
// In prod only the first source, or a file that already exists, is accepted.
func InitTokenSecret(cfg Config, logger *slog.Logger) ([]byte, error) {
	prod := cfg.Env == "prod"

	switch {
	case cfg.TokenSecret != "":
		logger.Info("token secret loaded from environment")
		return []byte(cfg.TokenSecret), nil

	case cfg.TokenSecretFile != "":
		if prod {
			if _, err := os.Stat(cfg.TokenSecretFile); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrSecretRequired, err)
			}
		}

		secret, generated, err := cryptox.LoadOrCreateSecret(cfg.TokenSecretFile, cryptox.TokenSize256)
		if err != nil {
			return nil, fmt.Errorf("failed to load token secret: %w", err)
		}
		if generated {
			logger.Warn("generated new token secret", "path", cfg.TokenSecretFile)
		} else {
			logger.Info("token secret loaded from file", "path", cfg.TokenSecretFile)
		}
		return []byte(secret), nil

	case prod:
		return nil, ErrSecretRequired

	default:
		secret, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return nil, fmt.Errorf("failed to generate token secret: %w", err)
		}
		logger.Warn("using ephemeral token secret - tokens will not survive restarts")
		return []byte(secret), nil
	}
}
