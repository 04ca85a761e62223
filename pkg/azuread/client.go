// Package azuread obtains Azure AD access tokens with the OAuth2 client
// credentials grant.
//
// Client.GetToken is a single call to the v1 token endpoint. TokenSource wraps
// it in a tokencache.Cache and exposes the result as an oauth2.TokenSource;
// NewConfidentialSource does the same for v2 scope-based tokens through MSAL.
package azuread

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tgedr/connectors/pkg/connector"
	"github.com/tgedr/connectors/pkg/cryptox"
	"github.com/tgedr/connectors/pkg/httpx"
)

const (
	connectorName = "azuread"

	DefaultAuthorityURL = "https://login.microsoftonline.com"
)

// Client requests tokens from one authority host.
type Client struct {
	// AuthorityURL is the scheme and host of the identity platform, no
	// trailing slash.
	AuthorityURL string

	HTTPClient *http.Client
	Logger     *slog.Logger

	now func() time.Time
}

// NewClient returns a client for the public Azure cloud.
func NewClient() *Client {
	return &Client{
		AuthorityURL: DefaultAuthorityURL,
		HTTPClient: httpx.NewClient(httpx.Options{
			Connector:        connectorName,
			RequestIDHeaders: []string{httpx.HeaderAzureRequestID},
		}),
		Logger: slog.Default(),
		now:    time.Now,
	}
}

// GetToken requests an access token for resource on behalf of the
// application clientID in tenant.
//
// The request is a GET carrying a form encoded body, which is what the
// endpoint has been observed to accept from this client.
func (c *Client) GetToken(ctx context.Context, tenant, clientID, clientSecret, resource string) (*TokenResponse, error) {
	const op = "get token"

	if err := requireCredentials(tenant, clientID, clientSecret); err != nil {
		return nil, err
	}

	logger := c.logger().With("op", op, "tenant", tenant, "client_id", clientID, "resource", resource)

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"resource_key":  {resource},
	}
	endpoint := c.AuthorityURL + "/" + url.PathEscape(tenant) + "/oauth2/token"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, connector.Fail(logger, connector.Wrap(connectorName, op, fmt.Errorf("failed to create request: %w", err)))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	logger.Debug("requesting token")
	body, err := connector.Call(c.HTTPClient, req, logger, connectorName, op)
	if err != nil {
		return nil, err
	}

	var tok TokenResponse
	if err := connector.DecodeJSON(body, &tok, logger, connectorName, op); err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, connector.Malformed(logger, connectorName, op, "access_token missing")
	}
	tok.ReceivedAt = c.clock()

	logger.Info("token issued",
		"token_fp", cryptox.FingerprintToken(tok.AccessToken),
		"expires_in", int64(tok.ExpiresIn),
	)
	return &tok, nil
}

func requireCredentials(tenant, clientID, clientSecret string) error {
	for _, check := range []struct{ field, value string }{
		{"tenant", tenant},
		{"client_id", clientID},
		{"client_secret", clientSecret},
	} {
		if err := connector.Required(check.field, check.value); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) clock() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}

func (c *Client) logger() *slog.Logger {
	l := c.Logger
	if l == nil {
		l = slog.Default()
	}
	return l.With("connector", connectorName)
}
