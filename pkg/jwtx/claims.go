package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AssertionClaims are the claims of a short-lived, self-signed assertion
// presented to a token endpoint in exchange for a bearer token. The
// assertion itself is never cached.
type AssertionClaims struct {
	// Username identifies the API account the assertion speaks for.
	Username string `json:"username"`

	// IssuedAt is the "iat" claim. Only the issue time is asserted; the
	// receiving service decides how long it accepts the assertion.
	IssuedAt *jwt.NumericDate `json:"iat"`
}

// NewAssertionClaims builds claims for username issued at now.
func NewAssertionClaims(username string, now time.Time) AssertionClaims {
	return AssertionClaims{
		Username: username,
		IssuedAt: jwt.NewNumericDate(now),
	}
}

func (c AssertionClaims) GetExpirationTime() (*jwt.NumericDate, error) { return nil, nil }
func (c AssertionClaims) GetIssuedAt() (*jwt.NumericDate, error)       { return c.IssuedAt, nil }
func (c AssertionClaims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c AssertionClaims) GetIssuer() (string, error)                   { return "", nil }
func (c AssertionClaims) GetSubject() (string, error)                  { return c.Username, nil }
func (c AssertionClaims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }
