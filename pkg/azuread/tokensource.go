package azuread

import (
	"context"
	"log/slog"

	"golang.org/x/oauth2"

	"github.com/tgedr/connectors/pkg/connector"
	"github.com/tgedr/connectors/pkg/tokencache"
)

// cacheSource adapts a tokencache.Cache to oauth2.TokenSource. Token uses
// the ctx captured at construction, as oauth2 sources conventionally do;
// TokenContext lets callers that have a ctx of their own pass it through.
type cacheSource struct {
	ctx    context.Context
	cache  *tokencache.Cache
	logger *slog.Logger
	op     string
}

func (s *cacheSource) Token() (*oauth2.Token, error) {
	return s.TokenContext(s.ctx)
}

// TokenContext returns the cached token, refreshing it on ctx when needed.
// A token the cache refuses, such as one already inside the margin, fails
// the same way as a rejected refresh.
func (s *cacheSource) TokenContext(ctx context.Context) (*oauth2.Token, error) {
	tok, err := s.cache.EnsureValid(ctx)
	if err != nil {
		return nil, connector.CredentialFailure(s.logger, connectorName, s.op, err)
	}
	return &oauth2.Token{
		AccessToken: tok.Value,
		TokenType:   "Bearer",
		Expiry:      tok.ExpiresAt,
	}, nil
}

// TokenSource returns a source that calls GetToken only when the cached
// token is missing or within tokencache.DefaultMargin of expiry. Credentials
// are validated immediately.
//
// Pair it with oauth2.NewClient to authorise any HTTP client.
func (c *Client) TokenSource(ctx context.Context, tenant, clientID, clientSecret, resource string) (oauth2.TokenSource, error) {
	if err := requireCredentials(tenant, clientID, clientSecret); err != nil {
		return nil, err
	}

	refresh := func(ctx context.Context) (tokencache.Token, error) {
		resp, err := c.GetToken(ctx, tenant, clientID, clientSecret, resource)
		if err != nil {
			return tokencache.Token{}, err
		}
		expiry := resp.Expiry()
		if expiry.IsZero() {
			return tokencache.Token{}, connector.Malformed(c.logger(), connectorName, "get token", "no expiry in token response")
		}
		return tokencache.Token{Value: resp.AccessToken, ExpiresAt: expiry}, nil
	}

	return &cacheSource{
		ctx:    ctx,
		cache:  tokencache.New(refresh, tokencache.WithClock(c.clock)),
		logger: c.logger().With("tenant", tenant, "client_id", clientID, "resource", resource),
		op:     "token",
	}, nil
}
