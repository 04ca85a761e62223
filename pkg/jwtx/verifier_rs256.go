package jwtx

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
	ErrStale        = errors.New("jwtx: assertion too old")
)

// RS256Verifier checks assertions signed with a single RSA key. Token
// endpoints (and the stub endpoints in tests) use it to accept a caller.
type RS256Verifier struct {
	key    *rsa.PublicKey
	maxAge time.Duration
	now    func() time.Time
}

// NewVerifierRS256 creates a verifier that accepts assertions issued within
// maxAge of now. A zero maxAge disables the age check.
func NewVerifierRS256(key *rsa.PublicKey, maxAge time.Duration) *RS256Verifier {
	return &RS256Verifier{key: key, maxAge: maxAge, now: time.Now}
}

// Verify validates the compact JWT and returns its claims.
func (v *RS256Verifier) Verify(tokenStr string) (*AssertionClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.now),
	)

	var claims AssertionClaims
	_, err := parser.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse or verify: %w", err)
	}

	if claims.Username == "" || claims.IssuedAt == nil {
		return nil, ErrInvalidClaim
	}
	if v.maxAge > 0 && v.now().Sub(claims.IssuedAt.Time) > v.maxAge {
		return nil, ErrStale
	}

	return &claims, nil
}
