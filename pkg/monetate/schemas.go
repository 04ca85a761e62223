package monetate

import (
	"context"
	"net/http"
)

// GetSchemas lists the account's data schemas with their row counts.
func (c *Client) GetSchemas(ctx context.Context) (*SchemaList, error) {
	const op = "get schemas"
	logger := c.logger().With("op", op)

	body, err := c.doAuthRequest(ctx, logger, op, http.MethodGet, c.DataURL+"schema/?row_count=True", nil, nil)
	if err != nil {
		return nil, err
	}

	var env schemasEnvelope
	if err := decode(body, &env, logger, op); err != nil {
		return nil, err
	}
	if env.Meta == nil || env.Meta.Count == nil {
		return nil, malformed(logger, op, "meta.count missing")
	}

	result := &SchemaList{Count: *env.Meta.Count, Schemas: env.Data}
	logger.Info("schemas listed", "count", result.Count)
	return result, nil
}
