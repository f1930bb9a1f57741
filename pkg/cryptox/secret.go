package cryptox

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LoadOrCreateSecret returns the secret stored at path, generating and
// persisting a random one of size bytes when the file does not exist yet.
// The second return value reports whether the secret was generated.
//
// It backs both the password pepper and the token signing secret.
func LoadOrCreateSecret(path string, size int) (string, bool, error) {
	path = filepath.Clean(path)

	raw, err := os.ReadFile(path)
	if err == nil {
		secret := strings.TrimSpace(string(raw))
		if secret == "" {
			return "", false, errors.New("cryptox: secret file " + path + " is empty")
		}
		return secret, false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", false, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", false, err
	}

	secret, err := GenerateToken(size)
	if err != nil {
		return "", false, err
	}

	// O_EXCL so two processes racing on first start can't both write.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return LoadOrCreateSecret(path, size)
		}
		return "", false, err
	}
	defer f.Close()

	if _, err := f.WriteString(secret); err != nil {
		return "", false, err
	}
	return secret, true, nil
}
