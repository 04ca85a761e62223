package monetate

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/tgedr/connectors/pkg/connector"
	"github.com/tgedr/connectors/pkg/cryptox"
	"github.com/tgedr/connectors/pkg/jwtx"
	"github.com/tgedr/connectors/pkg/tokencache"
)

// EnsureToken makes sure a usable bearer token is cached, refreshing it if
// needed. Data calls do this themselves; calling it up front just moves the
// refresh cost (and any auth failure) earlier.
func (c *Client) EnsureToken(ctx context.Context) error {
	const op = "ensure token"
	if _, err := c.tokens.EnsureValid(ctx); err != nil {
		return connector.CredentialFailure(c.logger().With("op", op), connectorName, op, err)
	}
	return nil
}

// refreshToken exchanges a freshly signed assertion for a bearer token. It
// is the tokencache.RefreshFunc of the client.
func (c *Client) refreshToken(ctx context.Context) (tokencache.Token, error) {
	const op = "refresh token"
	logger := c.logger().With("op", op)

	authFailure := func(err error) error {
		return connector.Wrap(connectorName, op, fmt.Errorf("%w: %w", connector.ErrAuth, err))
	}

	assertion, err := jwtx.SignAssertion(c.signer, c.username, c.clock())
	if err != nil {
		return tokencache.Token{}, connector.Fail(logger, connector.Wrap(connectorName, op,
			fmt.Errorf("%w: %w", connector.ErrAuth, err)))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.TokenURL+"refresh/", nil)
	if err != nil {
		return tokencache.Token{}, authFailure(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Authorization", "JWT "+assertion)

	logger.Debug("refreshing token")
	body, err := connector.Call(c.HTTPClient, req, logger, connectorName, op)
	if err != nil {
		return tokencache.Token{}, authFailure(err)
	}

	var env tokenEnvelope
	if err := connector.DecodeJSON(body, &env, logger, connectorName, op); err != nil {
		return tokencache.Token{}, authFailure(err)
	}
	if env.Data == nil || env.Data.Token == "" || env.Data.ExpiresAt <= 0 {
		return tokencache.Token{}, authFailure(connector.Malformed(logger, connectorName, op, "data.token or data.expires_at missing"))
	}

	sec, frac := math.Modf(env.Data.ExpiresAt)
	tok := tokencache.Token{
		Value:     env.Data.Token,
		ExpiresAt: time.Unix(int64(sec), int64(frac*1e9)),
	}

	logger.Info("token refreshed",
		"token_fp", cryptox.FingerprintToken(tok.Value),
		"expires_at", tok.ExpiresAt.UTC().Format(time.RFC3339),
	)
	return tok, nil
}
