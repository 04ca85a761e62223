package azuread

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"golang.org/x/oauth2"
)

var _ azcore.TokenCredential = (*Credential)(nil)

// contextSource is implemented by the token sources of this package so a
// refresh can run on the caller's ctx rather than the one captured when the
// source was built.
type contextSource interface {
	TokenContext(ctx context.Context) (*oauth2.Token, error)
}

// Credential lets Azure SDK clients authenticate with a token source from
// this package. The source is bound to one resource or scope set, so the
// scopes an SDK client asks for are ignored.
type Credential struct {
	src oauth2.TokenSource
}

func NewCredential(src oauth2.TokenSource) *Credential {
	return &Credential{src: src}
}

// GetToken implements azcore.TokenCredential. Sources from TokenSource and
// NewConfidentialSource refresh on ctx; other sources use their own.
func (c *Credential) GetToken(ctx context.Context, _ policy.TokenRequestOptions) (azcore.AccessToken, error) {
	var (
		tok *oauth2.Token
		err error
	)
	if cs, ok := c.src.(contextSource); ok {
		tok, err = cs.TokenContext(ctx)
	} else {
		tok, err = c.src.Token()
	}
	if err != nil {
		return azcore.AccessToken{}, err
	}
	return azcore.AccessToken{Token: tok.AccessToken, ExpiresOn: tok.Expiry}, nil
}
