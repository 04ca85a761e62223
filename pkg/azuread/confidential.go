package azuread

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/AzureAD/microsoft-authentication-library-for-go/apps/confidential"
	"golang.org/x/oauth2"

	"github.com/tgedr/connectors/pkg/connector"
	"github.com/tgedr/connectors/pkg/tokencache"
)

// ConfidentialOptions tune NewConfidentialSource.
type ConfidentialOptions struct {
	// AuthorityURL defaults to DefaultAuthorityURL.
	AuthorityURL string

	// HTTPClient is handed to MSAL for all its requests when set.
	HTTPClient *http.Client

	// SkipInstanceDiscovery turns off MSAL's authority validation, which
	// hosts it does not know (such as test servers) need.
	SkipInstanceDiscovery bool

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// NewConfidentialSource returns an oauth2.TokenSource issuing v2 tokens for
// scopes (e.g. "https://storage.azure.com/.default") through MSAL's
// confidential client, cached with the same margin as TokenSource.
func NewConfidentialSource(ctx context.Context, tenant, clientID, clientSecret string, scopes []string, opts ConfidentialOptions) (oauth2.TokenSource, error) {
	const op = "acquire token by credential"

	if err := requireCredentials(tenant, clientID, clientSecret); err != nil {
		return nil, err
	}
	if len(scopes) == 0 {
		return nil, &connector.ValidationError{Field: "scopes", Reason: "at least one scope is required"}
	}

	cred, err := confidential.NewCredFromSecret(clientSecret)
	if err != nil {
		return nil, &connector.ValidationError{Field: "client_secret", Reason: err.Error()}
	}

	authority := opts.AuthorityURL
	if authority == "" {
		authority = DefaultAuthorityURL
	}

	var msalOpts []confidential.Option
	if opts.HTTPClient != nil {
		msalOpts = append(msalOpts, confidential.WithHTTPClient(opts.HTTPClient))
	}
	if opts.SkipInstanceDiscovery {
		msalOpts = append(msalOpts, confidential.WithInstanceDiscovery(false))
	}

	app, err := confidential.New(authority+"/"+tenant, clientID, cred, msalOpts...)
	if err != nil {
		return nil, connector.Wrap(connectorName, "new confidential client", err)
	}

	logger := slog.Default().With("tenant", tenant, "client_id", clientID)
	if opts.Logger != nil {
		logger = opts.Logger.With("tenant", tenant, "client_id", clientID)
	}

	refresh := func(ctx context.Context) (tokencache.Token, error) {
		res, err := app.AcquireTokenByCredential(ctx, scopes)
		if err != nil {
			return tokencache.Token{}, connector.Fail(logger, connector.Wrap(connectorName, op, fmt.Errorf("%w: %w", connector.ErrAuth, err)))
		}
		return tokencache.Token{Value: res.AccessToken, ExpiresAt: res.ExpiresOn}, nil
	}

	return &cacheSource{ctx: ctx, cache: tokencache.New(refresh), logger: logger, op: op}, nil
}
