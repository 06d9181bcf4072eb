// Package auth provides client-credentials authentication against the music
// vendor's token endpoint, with an in-process token cache.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// DefaultLeeway is how long before actual expiry a cached token is refreshed.
const DefaultLeeway = 60 * time.Second

// ErrMissingCredentials is returned when the client id or secret is empty.
var ErrMissingCredentials = errors.New("missing client id or client secret")

// TokenCache owns one cached bearer token obtained via the client-credentials
// grant. The refresh is single-flight: concurrent callers that find the token
// expired block on one exchange; everyone else reads the cached token.
type TokenCache struct {
	conf   *clientcredentials.Config
	leeway time.Duration
	now    func() time.Time

	mu    sync.Mutex
	token *oauth2.Token
}

// Option configures a TokenCache.
type Option func(*TokenCache)

// WithLeeway sets how long before expiry the token is refreshed.
func WithLeeway(d time.Duration) Option {
	return func(c *TokenCache) {
		if d > 0 {
			c.leeway = d
		}
	}
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(c *TokenCache) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a TokenCache for the given credentials and token endpoint.
// Returns ErrMissingCredentials if either credential is empty.
func New(clientID, clientSecret, tokenURL string, opts ...Option) (*TokenCache, error) {
	if clientID == "" || clientSecret == "" {
		return nil, ErrMissingCredentials
	}

	c := &TokenCache{
		conf: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
		},
		leeway: DefaultLeeway,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Token returns the cached token, exchanging credentials for a fresh one
// when the cache is empty or within the refresh leeway of expiry.
func (c *TokenCache) Token(ctx context.Context) (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid() {
		return c.token, nil
	}

	token, err := c.conf.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("exchanging client credentials: %w", err)
	}

	c.token = token
	return token, nil
}

// valid reports whether the cached token can still be used. Callers must
// hold c.mu. A token without an expiry never refreshes.
func (c *TokenCache) valid() bool {
	if c.token == nil || c.token.AccessToken == "" {
		return false
	}
	if c.token.Expiry.IsZero() {
		return true
	}
	return c.now().Add(c.leeway).Before(c.token.Expiry)
}

// Source adapts the cache to an oauth2.TokenSource bound to ctx.
func (c *TokenCache) Source(ctx context.Context) oauth2.TokenSource {
	return &contextSource{ctx: ctx, cache: c}
}

// Client returns an *http.Client that attaches the cached bearer token to
// every request.
func (c *TokenCache) Client(ctx context.Context) *http.Client {
	return oauth2.NewClient(ctx, c.Source(ctx))
}

// contextSource carries the context the oauth2.TokenSource interface lacks.
type contextSource struct {
	ctx   context.Context
	cache *TokenCache
}

func (s *contextSource) Token() (*oauth2.Token, error) {
	return s.cache.Token(s.ctx)
}
