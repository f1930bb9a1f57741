package httpx

import "strings"

// BearerToken extracts the credential from an Authorization header value.
//
// The token is the second whitespace-separated field; the scheme word is
// not checked. A value with no second field yields "".
func BearerToken(header string) string {
	fields := strings.Fields(header)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}
