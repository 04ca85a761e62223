package monetate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/tgedr/connectors/pkg/connector"
)

// doAuthRequest performs a data API request with the cached bearer token,
// refreshing it first when it is missing or about to expire. It returns the
// body of a 2xx response.
func (c *Client) doAuthRequest(
	ctx context.Context,
	logger *slog.Logger,
	op, method, url string,
	body io.Reader,
	headers map[string]string,
) ([]byte, error) {
	tok, err := c.tokens.EnsureValid(ctx)
	if err != nil {
		return nil, connector.CredentialFailure(logger, connectorName, op, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, connector.Fail(logger, connector.Wrap(connectorName, op, fmt.Errorf("failed to create request: %w", err)))
	}

	req.Header.Set("Authorization", "Token "+tok.Value)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	respBody, err := connector.Call(c.HTTPClient, req, logger, connectorName, op)
	if connector.IsStatus(err, http.StatusUnauthorized) {
		// The server no longer accepts the token; make the next call
		// fetch a new one instead of reusing it until it expires.
		c.tokens.Invalidate()
	}
	return respBody, err
}
