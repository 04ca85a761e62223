// Package jwtx signs and verifies the short-lived assertions API clients
// exchange for bearer tokens.
package jwtx

import "time"

// Signer is our interface for anything that can mint assertion JWTs.
type Signer interface {
	Alg() string
	Sign(AssertionClaims) (string, error)
	Validate() error
}

// NewSignerRS256 creates an RS256 signer from PEM bytes. kid is optional;
// when empty no "kid" header is emitted.
func NewSignerRS256(kid string, pemKey []byte) (Signer, error) {
	return newRS256Signer(kid, pemKey)
}

// SignAssertion mints a fresh assertion for username issued at now. Every
// call yields a new token; assertions are never reused.
func SignAssertion(s Signer, username string, now time.Time) (string, error) {
	return s.Sign(NewAssertionClaims(username, now))
}
