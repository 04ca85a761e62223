// Package tablestorage talks to the Azure Table Storage REST API with
// SharedKeyLite-signed requests.
package tablestorage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tgedr/connectors/pkg/connector"
	"github.com/tgedr/connectors/pkg/httpx"
)

const (
	connectorName = "tablestorage"

	// APIVersion is sent as x-ms-version.
	APIVersion = "2016-05-31"

	acceptNoMetadata = "application/json;odata=nometadata"
)

// Client reads and writes entities in one table of one storage account.
type Client struct {
	// BaseURL is the account's table endpoint, without trailing slash.
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger

	// Now stamps x-ms-date. Defaults to time.Now.
	Now func() time.Time

	account string
	table   string
	signer  *Signer
}

// New returns a client for table in storageAccount, authenticating with the
// Base64 account key. Inputs are validated before anything is sent.
func New(storageAccount, storageAccountKey, table string) (*Client, error) {
	if err := connector.Required("table", table); err != nil {
		return nil, err
	}
	signer, err := NewSigner(storageAccount, storageAccountKey)
	if err != nil {
		return nil, err
	}

	return &Client{
		BaseURL: fmt.Sprintf("https://%s.table.core.windows.net", storageAccount),
		HTTPClient: httpx.NewClient(httpx.Options{
			Connector:        connectorName,
			RequestIDHeaders: []string{httpx.HeaderAzureRequestID},
		}),
		Logger:  slog.Default(),
		Now:     time.Now,
		account: storageAccount,
		table:   table,
		signer:  signer,
	}, nil
}

// Insert posts entity to the table and returns the entity as stored by the
// service.
func (c *Client) Insert(ctx context.Context, entity Entity) (Entity, error) {
	const op = "insert"
	logger := c.logger().With("op", op, "partition_key", entity.PartitionKey(), "row_key", entity.RowKey())

	if err := entity.Validate(); err != nil {
		return nil, connector.Reject(logger, err)
	}

	content, err := json.Marshal(entity)
	if err != nil {
		return nil, connector.Reject(logger, &connector.ValidationError{Field: "entity", Reason: err.Error()})
	}

	req, err := c.newRequest(ctx, http.MethodPost, "", bytes.NewReader(content))
	if err != nil {
		return nil, connector.Fail(logger, connector.Wrap(connectorName, op, err))
	}

	logger.Debug("inserting entity")
	body, err := connector.Call(c.HTTPClient, req, logger, connectorName, op)
	if err != nil {
		return nil, err
	}

	// A 204 (Prefer: return-no-content) carries no body; the entity is
	// then exactly what we sent.
	if len(bytes.TrimSpace(body)) == 0 {
		logger.Info("entity inserted")
		return entity, nil
	}

	var result Entity
	if err := connector.DecodeJSON(body, &result, logger, connectorName, op); err != nil {
		return nil, err
	}

	logger.Info("entity inserted")
	return result, nil
}

// Get fetches the entity addressed by partitionKey and rowKey. Either key
// may be empty, in which case it is left out of the filter.
func (c *Client) Get(ctx context.Context, partitionKey, rowKey string) (Entity, error) {
	const op = "get"
	logger := c.logger().With("op", op, "partition_key", partitionKey, "row_key", rowKey)

	req, err := c.newRequest(ctx, http.MethodGet, Filter(partitionKey, rowKey), nil)
	if err != nil {
		return nil, connector.Fail(logger, connector.Wrap(connectorName, op, err))
	}

	logger.Debug("getting entity")
	body, err := connector.Call(c.HTTPClient, req, logger, connectorName, op)
	if err != nil {
		return nil, err
	}

	var result Entity
	if err := connector.DecodeJSON(body, &result, logger, connectorName, op); err != nil {
		return nil, err
	}

	logger.Info("entity fetched", "fields", len(result))
	return result, nil
}

// newRequest builds a signed request against the table, optionally
// addressed by filter.
func (c *Client) newRequest(ctx context.Context, method, filter string, body *bytes.Reader) (*http.Request, error) {
	uri := strings.TrimSuffix(c.BaseURL, "/") + "/" + c.table + filter

	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, uri, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, uri, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	date := FormatDate(c.now())
	req.Header.Set("x-ms-date", date)
	req.Header.Set("x-ms-version", APIVersion)
	req.Header.Set("Authorization", c.signer.Authorization(date, CanonicalResource(c.account, c.table, filter)))
	req.Header.Set("Accept", acceptNoMetadata)
	req.Header.Set("Content-Type", "application/json")

	return req, nil
}

func (c *Client) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c *Client) logger() *slog.Logger {
	l := c.Logger
	if l == nil {
		l = slog.Default()
	}
	return l.With("connector", connectorName, "account", c.account, "table", c.table)
}
