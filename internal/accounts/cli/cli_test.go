package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/app"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) string {
	t.Helper()

	t.Setenv("ACCOUNTS_HOST", "")
	t.Setenv("ACCOUNTS_TOKEN", "")

	application, err := app.NewWithLogger(app.Config{
		Issuer:              "accounts-test",
		TokenSecret:         "0123456789abcdef0123456789abcdef",
		TokenTTL:            time.Hour,
		Store:               "memory",
		PasswordHasher:      "bcrypt",
		BcryptCost:          4,
		AllowAdminSignup:    true,
		ShutdownGracePeriod: time.Second,
	}, slogx.Discard())
	require.NoError(t, err)

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(srv.Close)
	return srv.URL
}

func run(host string, args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--host", host}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestUserLifecycle(t *testing.T) {
	host := newTestServer(t)

	_, err := run(host, "register", "--email", "root@example.com", "--password", "rootpass", "--admin")
	require.NoError(t, err)

	out, err := run(host, "-o", "json", "register", "--email", "jane@example.com", "--name", "Jane", "--password", "janepass")
	require.NoError(t, err)
	var jane accountsdk.User
	require.NoError(t, json.Unmarshal([]byte(out), &jane))
	require.Equal(t, "Jane", jane.Name)
	require.False(t, jane.IsAdmin)

	out, err = run(host, "login", "--email", "jane@example.com", "--password", "janepass")
	require.NoError(t, err)
	janeToken := strings.TrimSpace(out)
	require.NotEmpty(t, janeToken)

	out, err = run(host, "--token", janeToken, "profile")
	require.NoError(t, err)
	require.Contains(t, out, "jane@example.com")
	require.Contains(t, out, jane.ID)

	_, err = run(host, "--token", janeToken, "list")
	apiErr, ok := asAPIError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusForbidden, apiErr.StatusCode)

	out, err = run(host, "--token", janeToken, "-o", "json", "update", jane.ID, "--name", "Jane Doe")
	require.NoError(t, err)
	var updated accountsdk.User
	require.NoError(t, json.Unmarshal([]byte(out), &updated))
	require.Equal(t, jane.ID, updated.ID)
	require.Equal(t, "Jane Doe", updated.Name)
	require.Equal(t, "jane@example.com", updated.Email)

	out, err = run(host, "login", "--email", "root@example.com", "--password", "rootpass")
	require.NoError(t, err)
	rootToken := strings.TrimSpace(out)

	out, err = run(host, "--token", rootToken, "list")
	require.NoError(t, err)
	require.Contains(t, out, "root@example.com")
	require.Contains(t, out, "jane@example.com")

	out, err = run(host, "--token", rootToken, "delete", jane.ID)
	require.NoError(t, err)
	require.Equal(t, "deleted "+jane.ID+"\n", out)

	_, err = run(host, "login", "--email", "jane@example.com", "--password", "janepass")
	apiErr, ok = asAPIError(err)
	require.True(t, ok)
	require.Equal(t, accountsdk.ErrorCodeInvalidCredentials, apiErr.Code)
}

func TestTokenFromEnvironment(t *testing.T) {
	host := newTestServer(t)

	_, err := run(host, "register", "--email", "env@example.com", "--password", "pw")
	require.NoError(t, err)
	out, err := run(host, "login", "--email", "env@example.com", "--password", "pw")
	require.NoError(t, err)

	t.Setenv("ACCOUNTS_HOST", host)
	t.Setenv("ACCOUNTS_TOKEN", strings.TrimSpace(out))

	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"profile"})
	require.NoError(t, cmd.Execute())
	require.Contains(t, buf.String(), "env@example.com")
}

func TestPasswordPrompt(t *testing.T) {
	host := newTestServer(t)

	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = func(int) ([]byte, error) { return []byte("prompted"), nil }

	_, err := run(host, "register", "--email", "prompt@example.com")
	require.NoError(t, err)

	out, err := run(host, "login", "--email", "prompt@example.com", "--password", "prompted")
	require.NoError(t, err)
	require.NotEmpty(t, strings.TrimSpace(out))
}

func TestUpdateRequiresAField(t *testing.T) {
	_, err := run("http://127.0.0.1:0", "update", "some-id")
	require.ErrorContains(t, err, "nothing to update")
}

func TestUnsupportedOutputFormat(t *testing.T) {
	_, err := run("http://127.0.0.1:0", "-o", "yaml", "profile")
	require.ErrorContains(t, err, "unsupported output format")
}

func TestMissingTokenIsUnauthenticated(t *testing.T) {
	host := newTestServer(t)

	_, err := run(host, "profile")
	apiErr, ok := asAPIError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, accountsdk.ErrorCodeUnauthenticated, apiErr.Code)
}
