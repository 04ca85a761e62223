package monetate

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/tgedr/connectors/pkg/connector"
	"github.com/tgedr/connectors/pkg/httpx"
	"github.com/tgedr/connectors/pkg/jwtx"
	"github.com/tgedr/connectors/pkg/tokencache"
)

const (
	connectorName = "monetate"

	DefaultTokenURL    = "https://api.monetate.net/api/auth/v0/"
	DefaultAccount     = "pandorademo"
	DefaultEnvironment = "production"

	dataBaseURL = "https://api.monetate.net/api/data/v1/"
)

// DataURLFor returns the data API root for a Monetate account and
// environment, with trailing slash.
func DataURLFor(account, environment string) string {
	return dataBaseURL + account + "/" + environment + "/"
}

// Client talks to the data API as one API user.
type Client struct {
	// TokenURL is the auth API root, with trailing slash.
	TokenURL string

	// DataURL is the data API root, with trailing slash. See DataURLFor.
	DataURL string

	// ContentType is sent with PostRecords. Default: application/json.
	ContentType string

	HTTPClient *http.Client
	Logger     *slog.Logger

	username string
	signer   jwtx.Signer
	tokens   *tokencache.Cache
	clock    func() time.Time
}

// New returns a client for username, signing token requests with the PEM
// encoded RSA privateKey. Missing or unusable credentials are rejected here,
// before any network activity.
func New(username, privateKey string) (*Client, error) {
	if err := connector.Required("username", username); err != nil {
		return nil, err
	}
	if err := connector.Required("private_key", privateKey); err != nil {
		return nil, err
	}

	signer, err := jwtx.NewSignerRS256("", []byte(privateKey))
	if err != nil {
		return nil, &connector.ValidationError{Field: "private_key", Reason: err.Error()}
	}

	c := &Client{
		TokenURL:    DefaultTokenURL,
		DataURL:     DataURLFor(DefaultAccount, DefaultEnvironment),
		ContentType: "application/json",
		HTTPClient:  httpx.NewClient(httpx.Options{Connector: connectorName}),
		Logger:      slog.Default(),
		username:    username,
		signer:      signer,
		clock:       time.Now,
	}
	c.tokens = tokencache.New(c.refreshToken, tokencache.WithClock(func() time.Time { return c.clock() }))

	return c, nil
}

// TokenValid reports whether a bearer token is cached with more than the
// safety margin of lifetime left.
func (c *Client) TokenValid() bool {
	return c.tokens.IsValid()
}

func (c *Client) logger() *slog.Logger {
	l := c.Logger
	if l == nil {
		l = slog.Default()
	}
	return l.With("connector", connectorName, "username", c.username)
}
