package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// passwordOrPrompt returns flagValue when set, otherwise reads a password
// from the terminal without echo.
func passwordOrPrompt(flagValue string, w io.Writer) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if len(pw) == 0 {
		return "", errors.New("password is required")
	}
	return string(pw), nil
}

func asAPIError(err error) (*accountsdk.APIError, bool) {
	var apiErr *accountsdk.APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}
