// Package tokencache holds one bearer token with its expiry and refreshes it
// on demand once its remaining lifetime drops to the safety margin.
package tokencache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultMargin is the minimum remaining lifetime a cached token must have
// to be handed out without a refresh.
const DefaultMargin = 30 * time.Second

var (
	// ErrEmptyToken is returned when a refresh yields no token value.
	ErrEmptyToken = errors.New("tokencache: refresh returned an empty token")

	// ErrStaleToken is returned when a refresh yields a token that is
	// already inside the safety margin.
	ErrStaleToken = errors.New("tokencache: refresh returned an already expiring token")
)

// Token is a bearer credential and the instant it stops being accepted.
// Tokens are replaced wholesale, never mutated.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// IsZero reports whether t holds no credential.
func (t Token) IsZero() bool { return t.Value == "" }

// RefreshFunc obtains a brand new token from the issuer.
type RefreshFunc func(ctx context.Context) (Token, error)

// Cache owns one token. It is safe for concurrent use; concurrent callers
// that find the token stale share a single refresh.
type Cache struct {
	refresh RefreshFunc
	margin  time.Duration
	now     func() time.Time

	mu    sync.RWMutex
	token Token
}

type Option func(*Cache)

// WithMargin overrides DefaultMargin.
func WithMargin(d time.Duration) Option {
	return func(c *Cache) { c.margin = d }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New returns an empty cache that calls refresh whenever it needs a token.
func New(refresh RefreshFunc, opts ...Option) *Cache {
	c := &Cache{
		refresh: refresh,
		margin:  DefaultMargin,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsValid reports whether a token is cached and outlives the margin.
func (c *Cache) IsValid() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.validLocked()
}

func (c *Cache) validLocked() bool {
	return !c.token.IsZero() && c.token.ExpiresAt.Sub(c.now()) > c.margin
}

// EnsureValid returns the cached token, refreshing it first when it is
// missing or inside the margin. On refresh failure the previous token is
// left in place and the error is returned.
func (c *Cache) EnsureValid(ctx context.Context) (Token, error) {
	c.mu.RLock()
	if c.validLocked() {
		tok := c.token
		c.mu.RUnlock()
		return tok, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have refreshed while we waited for the lock.
	if c.validLocked() {
		return c.token, nil
	}

	tok, err := c.refresh(ctx)
	if err != nil {
		return Token{}, fmt.Errorf("tokencache: refresh: %w", err)
	}
	if tok.IsZero() {
		return Token{}, ErrEmptyToken
	}
	if tok.ExpiresAt.Sub(c.now()) <= c.margin {
		return Token{}, fmt.Errorf("%w: expires at %s", ErrStaleToken, tok.ExpiresAt.UTC().Format(time.RFC3339))
	}

	c.token = tok
	return tok, nil
}

// Current returns the cached token without checking or refreshing it.
func (c *Cache) Current() (Token, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token, !c.token.IsZero()
}

// Set installs tok as the cached token, e.g. one restored by the caller.
func (c *Cache) Set(tok Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = tok
}

// Invalidate drops the cached token so the next EnsureValid refreshes.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = Token{}
}
