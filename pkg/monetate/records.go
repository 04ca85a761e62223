package monetate

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tgedr/connectors/pkg/connector"
)

// GetRecord fetches the rows of schema whose id is recordID.
func (c *Client) GetRecord(ctx context.Context, schema, recordID string) (*Rows, error) {
	const op = "get record"
	logger := c.logger().With("op", op, "schema", schema, "record_id", recordID)

	if err := connector.Required("schema", schema); err != nil {
		return nil, connector.Reject(logger, err)
	}

	target := c.recordsURL(schema) + "?" + url.Values{"id": {recordID}}.Encode()
	body, err := c.doAuthRequest(ctx, logger, op, http.MethodGet, target, nil, nil)
	if err != nil {
		return nil, err
	}

	var env recordsEnvelope
	if err := decode(body, &env, logger, op); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, malformed(logger, op, "data missing")
	}

	logger.Info("record fetched", "rows", len(*env.Data))
	return &Rows{Rows: *env.Data}, nil
}

// PostRecords upserts records into schema and returns the rows as echoed by
// the API. At least one record is required.
func (c *Client) PostRecords(ctx context.Context, schema string, records []Record) (*Rows, error) {
	const op = "post records"
	logger := c.logger().With("op", op, "schema", schema, "records", len(records))

	if err := connector.Required("schema", schema); err != nil {
		return nil, connector.Reject(logger, err)
	}
	if len(records) == 0 {
		return nil, connector.Reject(logger, &connector.ValidationError{Field: "records", Reason: "at least one record is required"})
	}

	payload, err := json.Marshal(postRequest{SchemaRows: records})
	if err != nil {
		return nil, connector.Reject(logger, &connector.ValidationError{Field: "records", Reason: err.Error()})
	}

	contentType := c.ContentType
	if contentType == "" {
		contentType = "application/json"
	}

	body, err := c.doAuthRequest(ctx, logger, op, http.MethodPost, c.recordsURL(schema),
		bytes.NewReader(payload), map[string]string{"Content-Type": contentType})
	if err != nil {
		return nil, err
	}

	var env postEnvelope
	if err := decode(body, &env, logger, op); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, malformed(logger, op, "data.schema_rows missing")
	}

	logger.Info("records posted", "rows", len(env.Data.SchemaRows))
	return &Rows{Rows: env.Data.SchemaRows}, nil
}

// PostRecord is PostRecords for a single record.
func (c *Client) PostRecord(ctx context.Context, schema string, record Record) (*Rows, error) {
	return c.PostRecords(ctx, schema, []Record{record})
}

func (c *Client) recordsURL(schema string) string {
	return c.DataURL + "data/" + url.PathEscape(schema) + "/"
}

func decode(body []byte, v any, logger *slog.Logger, op string) error {
	return connector.DecodeJSON(body, v, logger, connectorName, op)
}

func malformed(logger *slog.Logger, op, what string) error {
	return connector.Malformed(logger, connectorName, op, what)
}
