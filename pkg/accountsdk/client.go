package accountsdk

import (
	"net/http"
	"strings"
	"time"
)

// Client is a client for the accounts service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// Token is sent as a bearer credential on authenticated requests.
	Token string
}

// NewClient creates a new accounts service client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// WithToken returns a copy of the client that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.Token = token
	return &cp
}
